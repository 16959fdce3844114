// Package matcher extracts candidate gift codes from raw message text.
package matcher

import (
	"regexp"
	"sync"
)

// Gift links come in a few historical flavors; the code itself is the trailing
// alphanumeric token. The pattern is lazily compiled on first use.
var giftPattern = sync.OnceValue(func() *regexp.Regexp {
	return regexp.MustCompile(`(?:discord\.gift|discord\.com/gifts|discordapp\.com/gifts)/([a-zA-Z0-9]{8,32})`)
})

// ExtractCode returns the first candidate code embedded in text, if any.
func ExtractCode(text string) (string, bool) {
	m := giftPattern().FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}
