// Package format holds the small text helpers shared by embed rendering.
package format

import (
	"fmt"
	"strings"
)

// Interpolate replaces %name markers in s with the values from ctx.
func Interpolate(s string, ctx map[string]interface{}) string {
	for k, v := range ctx {
		s = strings.ReplaceAll(s, "%"+k, fmt.Sprint(v))
	}
	return s
}

// Ellipsis shortens s to at most max runes, appending "..." when it cuts.
func Ellipsis(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
