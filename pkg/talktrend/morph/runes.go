package morph

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Code-point blocks treated as emoji. Kept as explicit ranges rather than
// unicode.RangeTable lookups so the covered blocks stay visible.
var emojiRanges = [][2]rune{
	{0x1F600, 0x1F64F}, // emoticons
	{0x1F300, 0x1F5FF}, // misc symbols and pictographs
	{0x1F680, 0x1F6FF}, // transport and map symbols
	{0x1F1E0, 0x1F1FF}, // regional indicators (flags)
	{0x2600, 0x26FF},   // misc symbols
	{0x2700, 0x27BF},   // dingbats
	{0x1F900, 0x1F9FF}, // supplemental symbols and pictographs
	{0x1FA00, 0x1FA6F}, // extended symbols and pictographs
	{0x2300, 0x23FF},   // misc technical
}

// ContainsEmoji reports whether text holds at least one emoji code point.
// Control characters, format characters, and combining marks (variation
// selectors and the like) neither count as emoji nor disqualify the text.
func ContainsEmoji(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	for _, r := range text {
		if unicode.In(r, unicode.Cc, unicode.Cf, unicode.Mn) {
			continue
		}
		for _, rng := range emojiRanges {
			if r >= rng[0] && r <= rng[1] {
				return true
			}
		}
	}
	return false
}

// isSingleKana reports whether text is exactly one hiragana, katakana,
// or half-width katakana character. Single kana are noise in chat logs.
func isSingleKana(text string) bool {
	if utf8.RuneCountInString(text) != 1 {
		return false
	}
	r, _ := utf8.DecodeRuneInString(text)
	switch {
	case r >= 0x3040 && r <= 0x309F: // hiragana
		return true
	case r >= 0x30A0 && r <= 0x30FF: // katakana
		return true
	case r >= 0xFF65 && r <= 0xFF9F: // half-width katakana
		return true
	}
	return false
}
