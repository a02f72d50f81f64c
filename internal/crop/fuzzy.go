package crop

// PartialRatio scores how well the shorter string aligns with the best
// same-length window of the longer one, on a 0-100 scale.
//
// Each window is compared with an Indel ratio (insertions and deletions
// only), so a transposition costs two edits rather than being forgiven.
// Inputs are compared rune by rune and are expected to be pre-normalised.
func PartialRatio(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	if len(ra) == 0 {
		return 0
	}

	best := 0.0
	for start := 0; start+len(ra) <= len(rb); start++ {
		r := indelRatio(ra, rb[start:start+len(ra)])
		if r > best {
			best = r
			if best == 1 {
				break
			}
		}
	}
	return int(best*100 + 0.5)
}

// indelRatio is 1 - indel(a,b)/(len(a)+len(b)), where the indel distance
// equals len(a)+len(b)-2*lcs(a,b).
func indelRatio(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 1
	}
	return float64(2*lcs(a, b)) / float64(total)
}

func lcs(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
