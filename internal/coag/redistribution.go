package coag

// receiverBin returns the index of the last bin strictly below the merged
// volume v, or n-1 when no bin reaches v. A result of -1 means v is at or
// below the smallest bin, which positive volumes cannot produce.
func receiverBin(volCenters []float64, v float64) int {
	n := len(volCenters)
	for k := 0; k < n; k++ {
		if volCenters[k] >= v {
			return k - 1
		}
	}
	return n - 1
}

// buildF fills the redistribution tensor. Only the upper bracketing bin is
// stored for each pair; the lower bin's share is the complement.
func buildF(volCenters []float64) ([][][]float64, [][]int) {
	n := len(volCenters)
	f := make([][][]float64, n)
	receiver := make([][]int, n)

	for i := 0; i < n; i++ {
		f[i] = make([][]float64, n)
		receiver[i] = make([]int, n)
		for j := 0; j < n; j++ {
			f[i][j] = make([]float64, n)

			v := volCenters[i] + volCenters[j]
			index := receiverBin(volCenters, v)
			receiver[i][j] = index

			switch {
			case index < 0:
				// unreachable for positive volumes
			case index < n-1:
				lo, hi := volCenters[index], volCenters[index+1]
				f[i][j][index+1] = (hi - v) / (hi - lo) * lo / v
			default:
				f[i][j][n-1] = 1.0
			}
		}
	}
	return f, receiver
}

// resolveFraction returns the share of the merged volume that ends in bin k,
// expanding the implicit complement stored by buildF.
func resolveFraction(f [][][]float64, receiver [][]int, i, j, k int) float64 {
	n := len(f)
	index := receiver[i][j]
	switch {
	case index < 0:
		return 0
	case index == n-1:
		if k == n-1 {
			return 1
		}
		return 0
	case k == index+1:
		return f[i][j][index+1]
	case k == index:
		return 1 - f[i][j][index+1]
	}
	return 0
}
