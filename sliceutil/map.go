package sliceutil

func Map[T any, R any](input []T, fn func(T) R) []R {
	result := make([]R, len(input))
	for i, v := range input {
		result[i] = fn(v)
	}
	return result
}

func Reversed[T any](input []T) []T {
	result := make([]T, len(input))
	for i, v := range input {
		result[len(input)-1-i] = v
	}
	return result
}
