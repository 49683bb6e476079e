package batch

import "runtime"

// MaxConcurrency caps automatic and user-supplied worker counts
const MaxConcurrency = 32

// OptimalConcurrency picks a worker count for I/O bound preview fetches
func OptimalConcurrency() int {
	numCPU := runtime.NumCPU()

	optimal := numCPU * 3
	if optimal < 4 {
		optimal = 4
	}
	if optimal > MaxConcurrency {
		optimal = MaxConcurrency
	}
	return optimal
}

func clampConcurrency(n int) int {
	if n <= 0 {
		return OptimalConcurrency()
	}
	if n > MaxConcurrency {
		return MaxConcurrency
	}
	return n
}
