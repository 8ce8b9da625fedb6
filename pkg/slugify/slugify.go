// Package slugify builds URL slugs from product names.
package slugify

import (
	"strconv"
	"strings"

	"github.com/gosimple/slug"
)

const fallback = "product"

// Base transliterates name into a lowercase ASCII slug.
func Base(name string) string {
	s := slug.Make(strings.TrimSpace(name))
	if s == "" {
		return fallback
	}
	return s
}

// Unique returns base, or base-2, base-3, ... whichever is the first not
// present in taken.
func Unique(base string, taken map[string]bool) string {
	if !taken[base] {
		return base
	}
	for n := 2; ; n++ {
		candidate := base + "-" + strconv.Itoa(n)
		if !taken[candidate] {
			return candidate
		}
	}
}
