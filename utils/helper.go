package utils

// DereferencePtr returns the pointed-to value, or a default (zero value if not
// given) when the pointer is nil.
func DereferencePtr[T any](ptr *T, defaultValue ...T) T {
	if ptr != nil {
		return *ptr
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	var zero T
	return zero
}

// NewPtr returns a pointer to the given value.
func NewPtr[T any](value T) *T {
	return &value
}
