package gen

// FloorDiv divides rounding toward negative infinity, so the
// world-to-chunk mapping stays a bijection across the origin.
func FloorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Mod returns the non-negative remainder matching FloorDiv.
func Mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

func AbsInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func MaxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
