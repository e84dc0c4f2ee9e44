package eventcategory

import (
	"strings"

	"github.com/forPelevin/gomoji"
	"github.com/rivo/uniseg"
)

const variationSelector16 = "\uFE0F"

// IsEmoji reports whether s is exactly one emoji from the Unicode emoji
// list. Skin tones, ZWJ sequences, flags and keycaps count as one emoji.
// A text-presentation form without U+FE0F is accepted when its
// emoji-presentation form is listed.
func IsEmoji(s string) bool {
	if s == "" || uniseg.GraphemeClusterCount(s) != 1 {
		return false
	}
	if _, err := gomoji.GetInfo(s); err == nil {
		return true
	}
	if strings.Contains(s, variationSelector16) {
		return false
	}
	_, err := gomoji.GetInfo(s + variationSelector16)
	return err == nil
}
