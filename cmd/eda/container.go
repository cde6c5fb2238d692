package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"eda/internal/analysis"
	"eda/internal/config"
	"eda/internal/load"
	"eda/internal/metrics"
	"eda/internal/profile"
	"eda/internal/render"
	"eda/internal/report"
	"eda/internal/schema"
	"eda/internal/source"
	"eda/internal/transform"
	"eda/internal/validate"
	"eda/pkg/frame"
)

// Function variables used to introduce test seams. In production these point
// at the real implementations; tests can override them.
var (
	openSourceFn = openSource
	newPlotterFn = func() render.Plotter { return render.NewGonumPlotter() }
)

// runPipeline executes one full report run. Stages run synchronously and in
// order, each fully consuming its predecessor's output: load, validate,
// profile, transform, analyze, render, assemble. Fatal errors come back
// wrapped with the stage that raised them; warn-level validation results ride
// along into the report preamble instead of failing the run.
func runPipeline(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	log = log.With(zap.String("run_id", uuid.NewString()), zap.String("dataset", cfg.Dataset.Name))
	job := metricsJob(cfg)
	sc := cfg.Schema()
	start := time.Now()

	src, err := openSourceFn(cfg.Dataset)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}

	var tab frame.Table
	if err := stage(job, "load", log, func() error {
		var err error
		tab, err = load.New(sc, log.Named("load")).Load(ctx, src)
		return err
	}); err != nil {
		return fmt.Errorf("load %s: %w", src.Name(), err)
	}
	metrics.AddRows(job, "loaded", tab.Len())

	var checks validate.Report
	if err := stage(job, "validate", log, func() error {
		checks = validate.Run(tab, sc, validate.Options{
			NullThresholdPct:          cfg.Checks.NullThresholdPct,
			MaxCategoricalCardinality: cfg.Checks.MaxCategoricalCardinality,
		})
		return checks.Err()
	}); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	warnings := warningLines(checks.Warnings())

	var prof *profile.DatasetProfile
	if err := stage(job, "profile", log, func() error {
		var err error
		prof, err = profile.Build(tab, sc)
		return err
	}); err != nil {
		return fmt.Errorf("profile: %w", err)
	}

	chain, err := transform.Build(cfg.Transforms)
	if err != nil {
		return fmt.Errorf("transform: %w", err)
	}
	analyzed, analyzedProf := tab, prof
	if len(chain) > 0 {
		if err := stage(job, "transform", log, func() error {
			var err error
			analyzed, err = chain.Apply(tab)
			return err
		}); err != nil {
			return fmt.Errorf("transform: %w", err)
		}
		metrics.AddRows(job, "transformed", analyzed.Len())
		if dropped := tab.Len() - analyzed.Len(); dropped > 0 {
			metrics.AddRows(job, "filtered_out", dropped)
		}
		// Analysis statistics must describe the population the steps see:
		// derived and binned columns profiled, filtered rows gone.
		if err := stage(job, "profile_transformed", log, func() error {
			var err error
			analyzedProf, err = profile.Build(analyzed, chain.Schema(sc))
			return err
		}); err != nil {
			return fmt.Errorf("profile: %w", err)
		}
	}

	steps, err := analysis.BuildSteps(cfg.Analysis.Steps, cfg.Analysis.MinPairedObservations)
	if err != nil {
		return fmt.Errorf("analysis: %w", err)
	}
	var findings []analysis.Finding
	if err := stage(job, "analyze", log, func() error {
		var err error
		findings, err = analysis.NewRunner(steps, cfg.Analysis.Parallelism, log.Named("analyze")).
			Run(ctx, analysis.NewView(analyzed), analyzedProf)
		return err
	}); err != nil {
		return err
	}
	metrics.AddFindings(job, len(findings))

	opts := render.Options{}
	if cfg.Report.Charts.Enabled {
		opts = render.Options{ChartDir: cfg.Report.Charts.Dir, Plotter: newPlotterFn()}
	}
	var artifacts []render.Artifact
	if err := stage(job, "render", log, func() error {
		var err error
		artifacts, err = render.Render(findings, analyzedProf, opts)
		return err
	}); err != nil {
		return fmt.Errorf("render: %w", err)
	}

	doc := report.Assemble(
		cfg.Report.Title,
		preamble(cfg, src.Name(), tab, prof),
		warnings,
		artifacts,
		conclusion(findings),
	)
	rendered := doc.Render()
	if err := stage(job, "report", log, func() error {
		return doc.Write(cfg.Report.Output)
	}); err != nil {
		return err
	}

	log.Info("run complete",
		zap.String("report", cfg.Report.Output),
		zap.String("rows", humanize.Comma(int64(analyzed.Len()))),
		zap.Int("findings", len(findings)),
		zap.Int("warnings", len(warnings)),
		zap.String("size", humanize.Bytes(uint64(len(rendered)))),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

// stage times fn, records the outcome under the stage label, and logs it.
func stage(job, name string, log *zap.Logger, fn func() error) error {
	start := time.Now()
	err := fn()
	took := time.Since(start)
	metrics.RecordStage(job, name, err, took)
	if err != nil {
		log.Error(name+" failed", zap.Duration("took", took), zap.Error(err))
		return err
	}
	log.Debug(name+" done", zap.Duration("took", took))
	return nil
}

// openSource builds the reader for the configured dataset source.
func openSource(ds config.Dataset) (source.Source, error) {
	s := ds.Source
	switch s.Kind {
	case "file", "":
		return source.NewFile(s.Path, source.DecodeDelimiter(s.Delimiter)), nil
	case "inline":
		return source.NewInline(ds.Name, s.Data, source.DecodeDelimiter(s.Delimiter)), nil
	case "sqlite":
		return source.NewSQLite(s.Path, s.Query), nil
	case "postgres":
		return source.NewPostgres(s.DSN, s.Query), nil
	default:
		return nil, fmt.Errorf("unsupported source kind %q", s.Kind)
	}
}

// metricsJob resolves the metrics job label: explicit metrics.job first, then
// the dataset name, then the binary name.
func metricsJob(cfg config.Config) string {
	if cfg.Metrics.Job != "" {
		return cfg.Metrics.Job
	}
	if cfg.Dataset.Name != "" {
		return cfg.Dataset.Name
	}
	return "eda"
}

// failureStage classifies a fatal error by the stage that owns its type.
func failureStage(err error) string {
	var failed *validate.FailedError
	switch {
	case errors.Is(err, load.ErrUnreadable), errors.Is(err, load.ErrMalformedRow):
		return "load"
	case errors.As(err, &failed):
		return "validate"
	case errors.Is(err, transform.ErrUnknownColumn), errors.Is(err, transform.ErrTypeMismatch):
		return "transform"
	case errors.Is(err, report.ErrUnwritable):
		return "report"
	default:
		return "run"
	}
}

// warningLines formats warn-level check results for the report preamble,
// matching the phrasing FailedError uses for fatal ones.
func warningLines(warns []validate.CheckResult) []string {
	if len(warns) == 0 {
		return nil
	}
	lines := make([]string, len(warns))
	for i, w := range warns {
		lines[i] = fmt.Sprintf("%s(%s): %s", w.Check, w.Column, w.Message)
	}
	return lines
}

// preamble describes the dataset as loaded: counts, identity, a data
// dictionary, and the first few rows. Everything here comes from the
// pre-transform table so readers see the input rather than the analysis view.
func preamble(cfg config.Config, origin string, tab frame.Table, prof *profile.DatasetProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dataset **%s** (%s): %s rows, %d columns, %s duplicate rows. Content fingerprint `%016x`.\n",
		cfg.Dataset.Name, origin, humanize.Comma(int64(prof.RowCount)), len(prof.Columns),
		humanize.Comma(int64(prof.DuplicateRows)), prof.Fingerprint)

	b.WriteString("\n### Data dictionary\n\n")
	b.WriteString("| column | kind | non-null | nulls | null % | distinct |\n")
	b.WriteString("| --- | --- | --- | --- | --- | --- |\n")
	for _, col := range prof.Columns {
		fmt.Fprintf(&b, "| %s | %s | %d | %d | %s | %s |\n",
			mdCell(col.Name), col.Kind, col.Count, col.NullCount,
			nullPct(col.NullCount, prof.RowCount), distinctCell(col))
	}

	if n := headCount(cfg.Report.HeadRows, tab.Len()); n > 0 {
		b.WriteString("\n### Sample rows\n\n")
		head := make([]string, len(tab.Columns))
		for i, c := range tab.Columns {
			head[i] = mdCell(c)
		}
		b.WriteString("| " + strings.Join(head, " | ") + " |\n")
		b.WriteString("|" + strings.Repeat(" --- |", len(tab.Columns)) + "\n")
		for _, row := range tab.Rows[:n] {
			cells := make([]string, len(tab.Columns))
			for i, c := range tab.Columns {
				cells[i] = mdCell(cellText(row[c]))
			}
			b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
		}
	}
	return b.String()
}

func nullPct(nulls, rows int) string {
	if rows == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(nulls)/float64(rows)*100)
}

func distinctCell(col profile.ColumnProfile) string {
	if col.Kind == schema.KindNumeric {
		return "-"
	}
	return strconv.Itoa(len(col.Categories))
}

func headCount(configured, rows int) int {
	if configured < 0 {
		configured = 0
	}
	if configured > rows {
		return rows
	}
	return configured
}

// cellText renders a raw cell for the sample-rows table.
func cellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

func mdCell(s string) string { return strings.ReplaceAll(s, "|", `\|`) }

// conclusion tallies findings by kind and calls out the strongest linear
// association when a relationship step produced one.
func conclusion(findings []analysis.Finding) string {
	if len(findings) == 0 {
		return "No findings: every configured step declined for lack of usable data."
	}
	counts := make(map[analysis.Kind]int, 4)
	for _, f := range findings {
		counts[f.Kind]++
	}
	parts := make([]string, 0, len(counts))
	for _, k := range []analysis.Kind{analysis.KindDistribution, analysis.KindRelationship, analysis.KindComparison, analysis.KindOutlier} {
		if n := counts[k]; n > 0 {
			parts = append(parts, countNoun(n, string(k)))
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "The run produced %s (%s).", countNoun(len(findings), "finding"), strings.Join(parts, ", "))
	if title, r, ok := strongestRelationship(findings); ok {
		fmt.Fprintf(&b, " The strongest linear association is %s (r=%.3f).", title, r)
	}
	return b.String()
}

func countNoun(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// strongestRelationship picks the relationship finding with the largest |r|.
func strongestRelationship(findings []analysis.Finding) (title string, r float64, ok bool) {
	best := -1.0
	for _, f := range findings {
		if f.Kind != analysis.KindRelationship {
			continue
		}
		for _, s := range f.Stats {
			if s.Name != "r" {
				continue
			}
			if abs := math.Abs(s.Value); abs > best {
				best, title, r, ok = abs, f.Title, s.Value, true
			}
		}
	}
	return title, r, ok
}
