package insta

import (
	"regexp"
	"strings"
)

// hashtagRE matches word runes plus the Latin-1/Latin Extended range so
// accented tags survive.
var hashtagRE = regexp.MustCompile(`#([0-9A-Za-z_\x{00C0}-\x{024F}]+)`)

const maxHashtags = 10

// ExtractHashtags returns up to maxHashtags unique tags from caption text,
// in first-seen order. Uniqueness is case-insensitive; the first spelling
// wins.
func ExtractHashtags(text string) []string {
	if text == "" {
		return nil
	}
	seen := map[string]bool{}
	var out []string
	for _, m := range hashtagRE.FindAllStringSubmatch(text, -1) {
		tag := "#" + m[1]
		low := strings.ToLower(tag)
		if seen[low] {
			continue
		}
		seen[low] = true
		out = append(out, tag)
		if len(out) >= maxHashtags {
			break
		}
	}
	return out
}
