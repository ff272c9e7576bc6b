package model

// surrSelf is the first code point that needs a surrogate pair in UTF-16.
const surrSelf = 0x10000

// utf16Len returns the length of s in UTF-16 code units.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if r >= surrSelf {
			n += 2
			continue
		}
		n++
	}
	return n
}

// splitsPair reports whether an offset in UTF-16 code units falls between the
// two halves of a surrogate pair in s.
func splitsPair(s string, units int) bool {
	n := 0
	for _, r := range s {
		if n >= units {
			return false
		}
		if r >= surrSelf {
			if n+1 == units {
				return true
			}
			n += 2
			continue
		}
		n++
	}
	return false
}

// byteOffset converts an offset in UTF-16 code units into a byte offset in s.
// An offset that falls between the two halves of a surrogate pair is rounded
// forward to the end of the pair. Cutting callers reject such offsets first
// with splitsPair.
func byteOffset(s string, units int) int {
	if units <= 0 {
		return 0
	}
	n := 0
	for i, r := range s {
		if n >= units {
			return i
		}
		if r >= surrSelf {
			n += 2
		} else {
			n++
		}
	}
	return len(s)
}

// sliceUTF16 returns s[from:to] with both bounds in UTF-16 code units.
func sliceUTF16(s string, from, to int) string {
	return s[byteOffset(s, from):byteOffset(s, to)]
}
