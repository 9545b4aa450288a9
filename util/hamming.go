package util

import "fmt"

// Mismatches returns the 0-based positions at which s1 and s2 differ, in
// increasing order. The comparison is a plain byte comparison; no symbol
// (including 'N') is treated as a wildcard. s1 and s2 must have equal length.
func Mismatches(s1, s2 string) []int {
	if len(s1) != len(s2) {
		panic(fmt.Sprintf("s1 and s2 must have equal length: '%s', '%s'", s1, s2))
	}
	var pos []int
	for i := 0; i < len(s1); i++ {
		if s1[i] != s2[i] {
			pos = append(pos, i)
		}
	}
	return pos
}

// Window returns s[start:end] with both bounds clamped to [0, len(s)]. A
// window that lies past the end of s is empty.
func Window(s string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(s) {
		end = len(s)
	}
	if start >= end {
		return ""
	}
	return s[start:end]
}
