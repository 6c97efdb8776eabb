package batch

// Split cuts items into consecutive chunks of at most size elements. The
// last chunk holds the remainder. A size below 1 is treated as 1. Chunks
// share the backing array but are capacity-limited, so appending to one
// never overwrites the next.
func Split[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size < 1 {
		size = 1
	}

	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end:end])
	}
	return chunks
}
