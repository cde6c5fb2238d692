// Package analysis executes an ordered list of named steps over the
// transformed table and its profile, producing findings. Step order is part
// of the narrative contract: earlier steps establish context for later ones,
// so results always come back in declaration order regardless of how they
// were computed.
package analysis

// Kind classifies what a finding claims.
type Kind string

const (
	KindDistribution Kind = "distribution"
	KindRelationship Kind = "relationship"
	KindComparison   Kind = "comparison"
	KindOutlier      Kind = "outlier"
)

// Stat is one named statistic. Findings carry ordered stat lists rather than
// maps so reports render identically run to run.
type Stat struct {
	Name  string
	Value float64
}

// GroupStat summarizes one group of a comparison.
type GroupStat struct {
	Group  string
	Count  int
	Min    float64
	Max    float64
	Mean   float64
	Median float64
}

// FlaggedPoint is one outlying observation.
type FlaggedPoint struct {
	Row   int // 1-based position in the analyzed table
	Value float64
	Z     float64
}

// Series is a labeled value sequence backing a chart.
type Series struct {
	Label  string
	Values []float64
}

// Pair is one (x, y) observation backing a scatter chart.
type Pair struct {
	X float64
	Y float64
}

// Finding is a discrete analytical result. A step emits zero or one of
// these; the runner assigns IDs from declaration positions, so IDs are
// stable across runs even when other steps decline.
type Finding struct {
	ID        string
	Title     string
	Kind      Kind
	Columns   []string
	Stats     []Stat
	Groups    []GroupStat    // comparison payload
	Flagged   []FlaggedPoint // outlier payload
	Series    []Series       // chart data for histogram and box forms
	Pairs     []Pair         // chart data for scatter forms
	Narrative string
}
