package testing

// Duplicates returns copies of the first n items e.g. ([a, b, c], 2) -> [a, b],
// when n exceeds len(items) items are repeated round-robin
func Duplicates[T any](items []T, n int) []T {
	if len(items) == 0 {
		return nil
	}

	dups := make([]T, 0, n)
	for i := 0; i < n; i++ {
		dups = append(dups, items[i%len(items)])
	}

	return dups
}
