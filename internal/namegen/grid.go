package namegen

// Chunk splits list into consecutive rows of at most size elements.
func Chunk[T any](list []T, size int) [][]T {
	if size <= 0 {
		size = 1
	}
	rows := make([][]T, 0, (len(list)+size-1)/size)
	for start := 0; start < len(list); start += size {
		end := min(start+size, len(list))
		rows = append(rows, list[start:end])
	}
	return rows
}

// Grid arranges names into rows of RowWidth.
func Grid(names []string) [][]string {
	return Chunk(names, RowWidth)
}
