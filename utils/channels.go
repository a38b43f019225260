// utils/channels.go
package utils

import "strings"

// NormalizeChannelNumber canonicalizes a channel number string so guide
// lookups match regardless of how the tuning device reported it: trims
// whitespace, strips leading zeros ("0702" -> "702") and normalizes the
// subchannel separator ("702.1" -> "702-1"). A bare "0" stays "0".
func NormalizeChannelNumber(channel string) string {
	ch := strings.TrimSpace(channel)
	if ch == "" {
		return ""
	}
	ch = strings.ReplaceAll(ch, ".", "-")

	main, sub, hasSub := strings.Cut(ch, "-")
	main = strings.TrimLeft(main, "0")
	if main == "" {
		main = "0"
	}
	if hasSub {
		return main + "-" + sub
	}
	return main
}
