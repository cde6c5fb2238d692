package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/dustin/go-humanize"

	"eda/internal/config"
	"eda/internal/profile"
	"eda/internal/stats"
)

// Step computes zero or one finding. A nil finding is the soft skip: the
// step has too little data for an honest statistic.
type Step interface {
	Name() string
	Run(v *View, prof *profile.DatasetProfile) *Finding
}

// DefaultZThreshold flags values more than three standard deviations out.
const DefaultZThreshold = 3.0

// BuildSteps turns step configs into executable steps, preserving order.
func BuildSteps(cfgs []config.StepConfig, minPaired int) ([]Step, error) {
	steps := make([]Step, 0, len(cfgs))
	for i, sc := range cfgs {
		switch Kind(sc.Kind) {
		case KindDistribution:
			steps = append(steps, &Distribution{StepName: sc.Name, Column: sc.Column})
		case KindRelationship:
			steps = append(steps, &Relationship{StepName: sc.Name, X: sc.X, Y: sc.Y, MinPaired: minPaired})
		case KindComparison:
			steps = append(steps, &Comparison{StepName: sc.Name, Column: sc.Column, GroupBy: sc.GroupBy})
		case KindOutlier:
			z := sc.ZThreshold
			if z <= 0 {
				z = DefaultZThreshold
			}
			steps = append(steps, &Outlier{StepName: sc.Name, Column: sc.Column, ZThreshold: z})
		default:
			return nil, fmt.Errorf("step %d (%s): unknown kind %q", i+1, sc.Name, sc.Kind)
		}
	}
	return steps, nil
}

// Distribution describes the spread of one numeric column.
type Distribution struct {
	StepName string
	Column   string
}

func (s *Distribution) Name() string { return s.StepName }

func (s *Distribution) Run(v *View, _ *profile.DatasetProfile) *Finding {
	vals := compact(v.NumericColumn(s.Column))
	if len(vals) == 0 {
		return nil
	}
	sum := stats.Summarize(vals)
	q1, med, q3 := stats.Quartiles(vals)
	return &Finding{
		Title:   fmt.Sprintf("Distribution of %s", s.Column),
		Kind:    KindDistribution,
		Columns: []string{s.Column},
		Stats: []Stat{
			{Name: "count", Value: float64(sum.Count)},
			{Name: "min", Value: sum.Min},
			{Name: "q1", Value: q1},
			{Name: "median", Value: med},
			{Name: "q3", Value: q3},
			{Name: "max", Value: sum.Max},
			{Name: "mean", Value: sum.Mean()},
			{Name: "stddev", Value: sum.StdDev()},
		},
		Series: []Series{{Label: s.Column, Values: vals}},
		Narrative: fmt.Sprintf(
			"%s spans %s to %s with mean %s and median %s (sd %s); the middle half lies between %s and %s.",
			s.Column, num(sum.Min), num(sum.Max), num(sum.Mean()), num(med),
			num(sum.StdDev()), num(q1), num(q3)),
	}
}

// Relationship measures the linear association between two numeric columns.
// Fewer complete pairs than MinPaired would make the coefficient misleading,
// so the step declines instead.
type Relationship struct {
	StepName  string
	X, Y      string
	MinPaired int
}

func (s *Relationship) Name() string { return s.StepName }

func (s *Relationship) Run(v *View, _ *profile.DatasetProfile) *Finding {
	xs, xnull := v.NumericColumn(s.X)
	ys, ynull := v.NumericColumn(s.Y)

	var acc stats.PairAccumulator
	pairs := make([]Pair, 0, len(xs))
	for i := range xs {
		if xnull[i] || ynull[i] {
			continue
		}
		acc.Add(xs[i], ys[i])
		pairs = append(pairs, Pair{X: xs[i], Y: ys[i]})
	}
	if acc.N < s.MinPaired {
		return nil
	}
	r := acc.Correlation()
	return &Finding{
		Title:   fmt.Sprintf("%s vs %s", s.X, s.Y),
		Kind:    KindRelationship,
		Columns: []string{s.X, s.Y},
		Stats: []Stat{
			{Name: "r", Value: r},
			{Name: "pairs", Value: float64(acc.N)},
		},
		Pairs: pairs,
		Narrative: fmt.Sprintf("%s and %s show %s (r=%.3f over %d paired observations).",
			s.X, s.Y, describeR(r), r, acc.N),
	}
}

// describeR names the association's strength and direction.
func describeR(r float64) string {
	direction := "positive"
	if r < 0 {
		direction = "negative"
	}
	switch abs := math.Abs(r); {
	case abs >= 0.8:
		return "a strong " + direction + " association"
	case abs >= 0.5:
		return "a moderate " + direction + " association"
	case abs >= 0.2:
		return "a weak " + direction + " association"
	default:
		return "little to no linear association"
	}
}

// Comparison contrasts a numeric column across the groups of a discrete
// column. Group order follows the profile's frequency order so repeated runs
// chart identically.
type Comparison struct {
	StepName string
	Column   string
	GroupBy  string
}

func (s *Comparison) Name() string { return s.StepName }

func (s *Comparison) Run(v *View, prof *profile.DatasetProfile) *Finding {
	vals, vnull := v.NumericColumn(s.Column)
	groups, gnull := v.CategoryColumn(s.GroupBy)

	byGroup := make(map[string][]float64)
	for i := range vals {
		if vnull[i] || gnull[i] {
			continue
		}
		byGroup[groups[i]] = append(byGroup[groups[i]], vals[i])
	}
	if len(byGroup) < 2 {
		return nil
	}

	var gs []GroupStat
	var series []Series
	for _, g := range groupOrder(byGroup, prof, s.GroupBy) {
		members := byGroup[g]
		sum := stats.Summarize(members)
		_, med, _ := stats.Quartiles(members)
		gs = append(gs, GroupStat{
			Group:  g,
			Count:  sum.Count,
			Min:    sum.Min,
			Max:    sum.Max,
			Mean:   sum.Mean(),
			Median: med,
		})
		series = append(series, Series{Label: g, Values: members})
	}

	hi, lo := gs[0], gs[0]
	for _, g := range gs[1:] {
		if g.Median > hi.Median {
			hi = g
		}
		if g.Median < lo.Median {
			lo = g
		}
	}
	return &Finding{
		Title:   fmt.Sprintf("%s by %s", s.Column, s.GroupBy),
		Kind:    KindComparison,
		Columns: []string{s.Column, s.GroupBy},
		Stats: []Stat{
			{Name: "groups", Value: float64(len(gs))},
		},
		Groups: gs,
		Series: series,
		Narrative: fmt.Sprintf(
			"%s differs across %s groups: the highest median is %s in %q, the lowest %s in %q.",
			s.Column, s.GroupBy, num(hi.Median), hi.Group, num(lo.Median), lo.Group),
	}
}

// groupOrder lists the observed groups in profile frequency order, appending
// groups unknown to the profile (for example bins derived after profiling)
// in lexical order of first appearance within the profile-less remainder.
func groupOrder(byGroup map[string][]float64, prof *profile.DatasetProfile, column string) []string {
	var ordered []string
	seen := make(map[string]bool, len(byGroup))
	if prof != nil {
		if cp, ok := prof.Column(column); ok {
			for _, cat := range cp.Categories {
				if _, present := byGroup[cat.Value]; present && !seen[cat.Value] {
					ordered = append(ordered, cat.Value)
					seen[cat.Value] = true
				}
			}
		}
	}
	if len(ordered) < len(byGroup) {
		rest := make([]string, 0, len(byGroup)-len(ordered))
		for g := range byGroup {
			if !seen[g] {
				rest = append(rest, g)
			}
		}
		sort.Strings(rest)
		ordered = append(ordered, rest...)
	}
	return ordered
}

// Outlier flags values whose |z| exceeds the threshold. A flat column has no
// meaningful z, and zero flagged rows carry no story; both decline.
type Outlier struct {
	StepName   string
	Column     string
	ZThreshold float64
}

func (s *Outlier) Name() string { return s.StepName }

func (s *Outlier) Run(v *View, _ *profile.DatasetProfile) *Finding {
	vals, null := v.NumericColumn(s.Column)
	sum := stats.Summarize(compact(vals, null))
	if sum.Count == 0 || sum.StdDev() == 0 {
		return nil
	}
	mean, sd := sum.Mean(), sum.StdDev()

	var flagged []FlaggedPoint
	pairs := make([]Pair, 0, sum.Count)
	for i := range vals {
		if null[i] {
			continue
		}
		pairs = append(pairs, Pair{X: float64(i + 1), Y: vals[i]})
		z := (vals[i] - mean) / sd
		if math.Abs(z) > s.ZThreshold {
			flagged = append(flagged, FlaggedPoint{Row: i + 1, Value: vals[i], Z: z})
		}
	}
	if len(flagged) == 0 {
		return nil
	}
	return &Finding{
		Title:   fmt.Sprintf("Outliers in %s", s.Column),
		Kind:    KindOutlier,
		Columns: []string{s.Column},
		Stats: []Stat{
			{Name: "flagged", Value: float64(len(flagged))},
			{Name: "z_threshold", Value: s.ZThreshold},
			{Name: "mean", Value: mean},
			{Name: "stddev", Value: sd},
		},
		Flagged: flagged,
		Pairs:   pairs,
		Narrative: fmt.Sprintf("%d of %d %s values sit more than %s standard deviations from the mean %s.",
			len(flagged), sum.Count, s.Column, num(s.ZThreshold), num(mean)),
	}
}

// num renders a statistic for narrative text.
func num(v float64) string { return humanize.CommafWithDigits(v, 2) }

// compact keeps the non-null values.
func compact(vals []float64, null []bool) []float64 {
	out := make([]float64, 0, len(vals))
	for i, x := range vals {
		if !null[i] {
			out = append(out, x)
		}
	}
	return out
}
