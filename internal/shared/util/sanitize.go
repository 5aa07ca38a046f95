package util

import (
	"path"
	"strconv"
	"strings"
)

// ReplaceUnsafe replaces every rune for which keep returns false with '_'.
// Each rune maps to exactly one underscore, so the output never shrinks.
func ReplaceUnsafe(s string, keep func(r rune) bool) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if keep(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}
	return b.String()
}

// IsAlphanumeric reports whether r is in [A-Za-z0-9].
func IsAlphanumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// IsFileNameSafe reports whether r is in [A-Za-z0-9._-].
func IsFileNameSafe(r rune) bool {
	return IsAlphanumeric(r) || r == '.' || r == '_' || r == '-'
}

// UniqueName returns name if it is free, otherwise the first of name_2.ext,
// name_3.ext, ... for which taken reports false.
func UniqueName(name string, taken func(string) bool) string {
	if !taken(name) {
		return name
	}
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	if base == "" {
		base, ext = name, ""
	}
	for n := 2; ; n++ {
		candidate := base + "_" + strconv.Itoa(n) + ext
		if !taken(candidate) {
			return candidate
		}
	}
}
