package render

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"eda/internal/analysis"
)

const histogramBins = 16

var highlightColor = color.RGBA{R: 0xd6, G: 0x2b, B: 0x2b, A: 0xff}

// GonumPlotter draws chart specs to PNG files with gonum/plot.
type GonumPlotter struct{}

// NewGonumPlotter returns a file-writing plotter.
func NewGonumPlotter() *GonumPlotter { return &GonumPlotter{} }

// Plot draws one chart to spec.File, creating the directory if needed.
func (gp *GonumPlotter) Plot(spec ChartSpec, data PlotData) error {
	if spec.File == "" {
		return fmt.Errorf("plot %q: no output file", spec.Title)
	}
	if dir := filepath.Dir(spec.File); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("plot %q: %w", spec.Title, err)
		}
	}

	p := plot.New()
	p.Title.Text = spec.Title
	p.X.Label.Text = spec.X
	p.Y.Label.Text = spec.Y

	switch spec.Type {
	case ChartHistogram:
		if err := addHistogram(p, data.Series); err != nil {
			return fmt.Errorf("plot %q: %w", spec.Title, err)
		}
	case ChartBox, ChartGroupedBox:
		if err := addBoxes(p, data.Series); err != nil {
			return fmt.Errorf("plot %q: %w", spec.Title, err)
		}
	case ChartScatter:
		if err := addScatter(p, data.Pairs, data.Highlight); err != nil {
			return fmt.Errorf("plot %q: %w", spec.Title, err)
		}
	default:
		return fmt.Errorf("plot %q: unknown chart type %q", spec.Title, spec.Type)
	}

	if err := p.Save(6*vg.Inch, 4*vg.Inch, spec.File); err != nil {
		return fmt.Errorf("plot %q: %w", spec.Title, err)
	}
	return nil
}

func addHistogram(p *plot.Plot, series []analysis.Series) error {
	if len(series) == 0 || len(series[0].Values) == 0 {
		return fmt.Errorf("histogram: no values")
	}
	h, err := plotter.NewHist(plotter.Values(series[0].Values), histogramBins)
	if err != nil {
		return err
	}
	p.Add(h)
	return nil
}

func addBoxes(p *plot.Plot, series []analysis.Series) error {
	if len(series) == 0 {
		return fmt.Errorf("box: no series")
	}
	labels := make([]string, 0, len(series))
	for i, s := range series {
		b, err := plotter.NewBoxPlot(vg.Points(24), float64(i), plotter.Values(s.Values))
		if err != nil {
			return fmt.Errorf("box %q: %w", s.Label, err)
		}
		p.Add(b)
		labels = append(labels, s.Label)
	}
	p.NominalX(labels...)
	return nil
}

func addScatter(p *plot.Plot, pairs, highlight []analysis.Pair) error {
	if len(pairs) == 0 {
		return fmt.Errorf("scatter: no pairs")
	}
	s, err := plotter.NewScatter(toXYs(pairs))
	if err != nil {
		return err
	}
	s.GlyphStyle.Radius = vg.Points(2)
	p.Add(s)

	if len(highlight) > 0 {
		hs, err := plotter.NewScatter(toXYs(highlight))
		if err != nil {
			return err
		}
		hs.GlyphStyle.Color = highlightColor
		hs.GlyphStyle.Radius = vg.Points(3)
		p.Add(hs)
	}
	return nil
}

func toXYs(pairs []analysis.Pair) plotter.XYs {
	pts := make(plotter.XYs, len(pairs))
	for i, pr := range pairs {
		pts[i].X = pr.X
		pts[i].Y = pr.Y
	}
	return pts
}
