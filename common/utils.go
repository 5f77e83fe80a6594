package common

// Coalesce returns the first non-zero value, or the zero value when every value is zero.
// Used where glTF treats 0 as "absent", e.g. a byteStride of 0 meaning tightly packed.
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// InRange reports whether index addresses an element of a collection of length n.
//
// Parameters:
//   - index: a document index, possibly negative
//   - n: the collection length
//
// Returns:
//   - bool: true if 0 <= index < n
func InRange(index, n int) bool {
	return index >= 0 && index < n
}
