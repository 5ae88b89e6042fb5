package layout

// GroupSize is the number of source pages placed on one output page.
const GroupSize = 4

// Group is a contiguous run of 0-based source page indices that share one
// output page.
type Group []int

// GroupCount returns the number of output pages needed for total source pages.
func GroupCount(total int) int {
	if total <= 0 {
		return 0
	}
	return (total + GroupSize - 1) / GroupSize
}

// Groups splits [0, total) into ordered groups of GroupSize pages.
// Only the last group can be shorter. A non-positive total yields no groups.
func Groups(total int) []Group {
	n := GroupCount(total)
	if n == 0 {
		return nil
	}

	groups := make([]Group, 0, n)
	for first := 0; first < total; first += GroupSize {
		last := min(first+GroupSize, total)
		g := make(Group, 0, last-first)
		for i := first; i < last; i++ {
			g = append(g, i)
		}
		groups = append(groups, g)
	}
	return groups
}
