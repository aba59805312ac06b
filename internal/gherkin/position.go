package gherkin

import "unicode/utf8"

// UTF16Len returns the length of s in UTF-16 code units, the unit editors
// use for columns.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16Units(r)
	}
	return n
}

// ByteOffset converts a UTF-16 column within s to a byte offset. Columns
// past the end of s clamp to len(s), and a column that falls inside a
// surrogate pair rounds up to the end of that rune.
func ByteOffset(s string, col int) int {
	units := 0
	for i := 0; i < len(s); {
		if units >= col {
			return i
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		units += utf16Units(r)
		i += size
	}
	return len(s)
}

func utf16Units(r rune) int {
	if r >= 0x10000 {
		return 2
	}
	return 1
}
