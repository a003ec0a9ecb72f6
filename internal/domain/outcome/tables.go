package outcome

// controlPoint anchors the draw/win interpolation: at an ability gap of gap,
// the stronger side wins with win% and the match is drawn with draw%.
type controlPoint struct {
	gap  float64
	draw float64
	win  float64
}

//nolint:gochecknoglobals // fixed model tables
var controlPoints = []controlPoint{
	{0, 33.3, 33.3},
	{10, 30, 44},
	{20, 26, 55},
	{30, 21.5, 65},
	{40, 17, 74},
	{50, 12.5, 82},
	{60, 8.5, 88.5},
	{70, 5, 93.5},
	{80, 2, 97.5},
	{90, 0.25, 99.5},
}

// weighted is a discrete distribution over goal counts.
type weighted struct {
	values  []int
	weights []int
}

// goalBucket selects the winning-goals table for gaps below upTo.
type goalBucket struct {
	upTo  float64
	table weighted
}

//nolint:gochecknoglobals // fixed model tables
var (
	winningBuckets = []goalBucket{
		{10, weighted{[]int{1, 2, 3, 4}, []int{45, 35, 15, 5}}},
		{20, weighted{[]int{1, 2, 3, 4, 5}, []int{38, 35, 18, 7, 2}}},
		{35, weighted{[]int{1, 2, 3, 4, 5}, []int{30, 34, 22, 10, 4}}},
		{50, weighted{[]int{1, 2, 3, 4, 5, 6}, []int{22, 30, 25, 14, 6, 3}}},
		{75, weighted{[]int{1, 2, 3, 4, 5, 6}, []int{15, 25, 27, 18, 10, 5}}},
		{100, weighted{[]int{2, 3, 4, 5, 6, 7}, []int{22, 26, 22, 15, 10, 5}}},
	}
	blowout    = weighted{[]int{3, 4, 5, 6, 7, 8, 9}, []int{15, 20, 20, 17, 13, 9, 6}}
	restrained = weighted{[]int{1, 2, 3}, []int{55, 35, 10}}
	losing     = weighted{[]int{0, 1, 2, 3, 4}, []int{45, 32, 15, 6, 2}}
	drawn      = weighted{[]int{0, 1, 2, 3, 4}, []int{28, 38, 24, 8, 2}}
)

func winningTable(gap float64) weighted {
	for _, b := range winningBuckets {
		if gap < b.upTo {
			return b.table
		}
	}
	return blowout
}
