// Package render turns findings into report artifacts: a markdown body, a
// caption, and an optional chart. Chart drawing is delegated to a Plotter so
// the artifact text is byte-identical whether or not charts are produced;
// only ChartSpec.File differs.
package render

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"eda/internal/analysis"
	"eda/internal/profile"
)

// ChartType selects the canonical chart form for a finding kind.
type ChartType string

const (
	ChartHistogram  ChartType = "histogram"
	ChartBox        ChartType = "box"
	ChartGroupedBox ChartType = "grouped_box"
	ChartScatter    ChartType = "scatter"
)

// ChartSpec describes one chart. File is set only when a Plotter draws it.
type ChartSpec struct {
	Type    ChartType
	Title   string
	X       string
	Y       string
	GroupBy string
	Series  []string
	File    string
}

// PlotData carries the values behind a chart. Series backs histogram and box
// forms, Pairs backs scatter forms, Highlight marks points drawn emphasized.
type PlotData struct {
	Series    []analysis.Series
	Pairs     []analysis.Pair
	Highlight []analysis.Pair
}

// Plotter draws one chart to spec.File.
type Plotter interface {
	Plot(spec ChartSpec, data PlotData) error
}

// Artifact is one rendered finding.
type Artifact struct {
	FindingID string
	Title     string
	Chart     *ChartSpec
	Caption   string
	Body      string
}

// Options configure rendering. A nil Plotter produces specs without files.
type Options struct {
	ChartDir string
	Plotter  Plotter
}

// Render maps findings to artifacts in order. Comparison series are ordered
// by the profile's category frequency order, so legends match the data
// dictionary regardless of how the finding was assembled.
func Render(findings []analysis.Finding, prof *profile.DatasetProfile, opts Options) ([]Artifact, error) {
	arts := make([]Artifact, 0, len(findings))
	for _, f := range findings {
		a, spec, data := build(f, prof)
		if opts.Plotter != nil && spec != nil {
			spec.File = filepath.Join(opts.ChartDir, f.ID+".png")
			if err := opts.Plotter.Plot(*spec, data); err != nil {
				return nil, fmt.Errorf("render %s: %w", f.ID, err)
			}
		}
		a.Chart = spec
		arts = append(arts, a)
	}
	return arts, nil
}

// build produces the artifact text and chart spec for one finding.
func build(f analysis.Finding, prof *profile.DatasetProfile) (Artifact, *ChartSpec, PlotData) {
	a := Artifact{FindingID: f.ID, Title: f.Title, Caption: f.Narrative}

	switch f.Kind {
	case analysis.KindDistribution:
		a.Body = statTable(f.Stats)
		spec := &ChartSpec{
			Type:   ChartHistogram,
			Title:  f.Title,
			X:      f.Columns[0],
			Series: seriesLabels(f.Series),
		}
		return a, spec, PlotData{Series: f.Series}

	case analysis.KindRelationship:
		a.Body = statTable(f.Stats)
		spec := &ChartSpec{
			Type:  ChartScatter,
			Title: f.Title,
			X:     f.Columns[0],
			Y:     f.Columns[1],
		}
		return a, spec, PlotData{Pairs: f.Pairs}

	case analysis.KindComparison:
		series := orderByProfile(f.Series, prof, f.Columns[1])
		a.Body = groupTable(orderGroups(f.Groups, series))
		spec := &ChartSpec{
			Type:    ChartGroupedBox,
			Title:   f.Title,
			X:       f.Columns[1],
			Y:       f.Columns[0],
			GroupBy: f.Columns[1],
			Series:  seriesLabels(series),
		}
		return a, spec, PlotData{Series: series}

	case analysis.KindOutlier:
		var b strings.Builder
		b.WriteString(statTable(f.Stats))
		b.WriteString("\n")
		b.WriteString(flaggedTable(f.Flagged))
		a.Body = b.String()
		spec := &ChartSpec{
			Type:  ChartScatter,
			Title: f.Title,
			X:     "row",
			Y:     f.Columns[0],
		}
		return a, spec, PlotData{Pairs: f.Pairs, Highlight: flaggedPairs(f.Flagged)}
	}

	// Unknown kinds render body-only.
	a.Body = statTable(f.Stats)
	return a, nil, PlotData{}
}

// orderByProfile stable-sorts series by the profile's frequency order for
// column. Labels the profile does not know keep their relative order after
// the known ones.
func orderByProfile(series []analysis.Series, prof *profile.DatasetProfile, column string) []analysis.Series {
	out := make([]analysis.Series, len(series))
	copy(out, series)
	if prof == nil {
		return out
	}
	cp, ok := prof.Column(column)
	if !ok {
		return out
	}
	rank := make(map[string]int, len(cp.Categories))
	for i, cat := range cp.Categories {
		rank[cat.Value] = i
	}
	pos := func(label string) int {
		if r, ok := rank[label]; ok {
			return r
		}
		return len(rank)
	}
	sort.SliceStable(out, func(i, j int) bool { return pos(out[i].Label) < pos(out[j].Label) })
	return out
}

// orderGroups arranges groups to match the series order.
func orderGroups(groups []analysis.GroupStat, series []analysis.Series) []analysis.GroupStat {
	byName := make(map[string]analysis.GroupStat, len(groups))
	for _, g := range groups {
		byName[g.Group] = g
	}
	out := make([]analysis.GroupStat, 0, len(groups))
	for _, s := range series {
		if g, ok := byName[s.Label]; ok {
			out = append(out, g)
		}
	}
	return out
}

func seriesLabels(series []analysis.Series) []string {
	labels := make([]string, len(series))
	for i, s := range series {
		labels[i] = s.Label
	}
	return labels
}

func flaggedPairs(flagged []analysis.FlaggedPoint) []analysis.Pair {
	pairs := make([]analysis.Pair, len(flagged))
	for i, p := range flagged {
		pairs[i] = analysis.Pair{X: float64(p.Row), Y: p.Value}
	}
	return pairs
}

// statTable renders the ordered statistics as a two-column markdown table.
func statTable(stats []analysis.Stat) string {
	var b strings.Builder
	b.WriteString("| statistic | value |\n| --- | --- |\n")
	for _, s := range stats {
		fmt.Fprintf(&b, "| %s | %s |\n", escapeCell(s.Name), fmtStat(s.Value))
	}
	return b.String()
}

// groupTable renders per-group statistics.
func groupTable(groups []analysis.GroupStat) string {
	var b strings.Builder
	b.WriteString("| group | count | min | median | mean | max |\n| --- | --- | --- | --- | --- | --- |\n")
	for _, g := range groups {
		fmt.Fprintf(&b, "| %s | %d | %s | %s | %s | %s |\n",
			escapeCell(g.Group), g.Count, fmtStat(g.Min), fmtStat(g.Median), fmtStat(g.Mean), fmtStat(g.Max))
	}
	return b.String()
}

// flaggedTable renders the outlying observations.
func flaggedTable(flagged []analysis.FlaggedPoint) string {
	var b strings.Builder
	b.WriteString("| row | value | z |\n| --- | --- | --- |\n")
	for _, p := range flagged {
		fmt.Fprintf(&b, "| %d | %s | %.2f |\n", p.Row, fmtStat(p.Value), p.Z)
	}
	return b.String()
}

// fmtStat renders a statistic: whole numbers without decimals, everything
// else with six significant digits.
func fmtStat(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// escapeCell keeps cell text from breaking the table.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
