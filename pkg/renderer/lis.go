package renderer

// GetSequence returns the indices of a longest strictly increasing
// subsequence of arr, ignoring zero entries. Zero marks a node with no old
// counterpart; such nodes are mounted, never moved.
func GetSequence(arr []int) []int {
	p := make([]int, len(arr))
	result := make([]int, 0, len(arr))
	for i, v := range arr {
		if v == 0 {
			continue
		}
		if n := len(result); n == 0 || arr[result[n-1]] < v {
			if n > 0 {
				p[i] = result[n-1]
			}
			result = append(result, i)
			continue
		}
		lo, hi := 0, len(result)-1
		for lo < hi {
			mid := int(uint(lo+hi) >> 1)
			if arr[result[mid]] < v {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		if v < arr[result[lo]] {
			if lo > 0 {
				p[i] = result[lo-1]
			}
			result[lo] = i
		}
	}
	if n := len(result); n > 0 {
		v := result[n-1]
		for u := n - 1; u >= 0; u-- {
			result[u] = v
			v = p[v]
		}
	}
	return result
}
