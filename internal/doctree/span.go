package doctree

import "unicode/utf8"

// SplitAt splits s around the code point range [start, end). Offsets outside
// the string are clamped; callers validate spans before relying on the result.
func SplitAt(s string, start, end int) (pre, mid, post string) {
	bs := byteOffset(s, start)
	be := byteOffset(s, end)
	if be < bs {
		be = bs
	}
	return s[:bs], s[bs:be], s[be:]
}

// RuneLen returns the length of s in code points.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

func byteOffset(s string, runeIdx int) int {
	if runeIdx <= 0 {
		return 0
	}
	n := 0
	for i := range s {
		if n == runeIdx {
			return i
		}
		n++
	}
	return len(s)
}
