package calc

// TankerUnit is the compartment size bulk fuel orders are split into, in
// ledger units (8000 liters x100).
const TankerUnit = 8000 * Factor

// SplitChunks splits total into ceil(total/unit) chunks. Every chunk equals
// unit except a possible smaller last one; the chunks always sum to total.
func SplitChunks(total, unit uint64) []uint64 {
	if total == 0 {
		return nil
	}
	if unit == 0 {
		return []uint64{total}
	}
	n := (total + unit - 1) / unit
	chunks := make([]uint64, n)
	for i := range chunks {
		chunks[i] = unit
	}
	if rem := total % unit; rem != 0 {
		chunks[n-1] = rem
	}
	return chunks
}

// SumChunks adds chunks back together.
func SumChunks(chunks []uint64) uint64 {
	var total uint64
	for _, c := range chunks {
		total += c
	}
	return total
}
