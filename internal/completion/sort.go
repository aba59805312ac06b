package completion

// SortWidth is the number of letters in a usage rank key.
const SortWidth = 5

// SortPrefix encodes count as width base-26 letters so that plain string
// ordering puts higher counts first: each digit d becomes 'Z'-d. Counts that
// do not fit saturate at all 'A'.
func SortPrefix(count, width int) string {
	if count < 0 {
		count = 0
	}
	out := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		out[i] = byte('Z' - count%26)
		count /= 26
	}
	if count > 0 {
		for i := range out {
			out[i] = 'A'
		}
	}
	return string(out)
}
