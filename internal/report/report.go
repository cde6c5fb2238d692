// Package report assembles rendered artifacts into one markdown document.
// Assembly is pure concatenation in a fixed order, so the same inputs always
// produce the same bytes.
package report

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"eda/internal/render"
)

// ErrUnwritable matches any report write failure.
var ErrUnwritable = errors.New("report unwritable")

// WriteError reports a failed write with its destination.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string { return fmt.Sprintf("write report %s: %v", e.Path, e.Err) }

func (e *WriteError) Unwrap() error { return e.Err }

// Is matches ErrUnwritable regardless of path or cause.
func (e *WriteError) Is(target error) bool { return target == ErrUnwritable }

// Report is an assembled document awaiting rendering.
type Report struct {
	Title      string
	Preamble   string
	Warnings   []string
	Artifacts  []render.Artifact
	Conclusion string
}

// Assemble builds a report. Artifact order is preserved; numbering comes
// from position.
func Assemble(title, preamble string, warnings []string, artifacts []render.Artifact, conclusion string) Report {
	return Report{
		Title:      title,
		Preamble:   preamble,
		Warnings:   warnings,
		Artifacts:  artifacts,
		Conclusion: conclusion,
	}
}

// Render produces the markdown document. Section order: title, preamble,
// validation warnings, numbered artifacts (chart link, caption, body),
// conclusion. Empty sections are omitted entirely.
func (r Report) Render() []byte {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n", r.Title)

	if r.Preamble != "" {
		sb.WriteString("\n")
		sb.WriteString(strings.TrimRight(r.Preamble, "\n"))
		sb.WriteString("\n")
	}

	if len(r.Warnings) > 0 {
		sb.WriteString("\n## Validation warnings\n\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&sb, "- %s\n", w)
		}
	}

	for i, a := range r.Artifacts {
		fmt.Fprintf(&sb, "\n## %d. %s\n\n", i+1, a.Title)
		if a.Chart != nil && a.Chart.File != "" {
			fmt.Fprintf(&sb, "![%s](%s)\n\n", a.Title, a.Chart.File)
		}
		if a.Caption != "" {
			sb.WriteString(a.Caption)
			sb.WriteString("\n\n")
		}
		if a.Body != "" {
			sb.WriteString(strings.TrimRight(a.Body, "\n"))
			sb.WriteString("\n")
		}
	}

	if r.Conclusion != "" {
		sb.WriteString("\n## Conclusion\n\n")
		sb.WriteString(strings.TrimRight(r.Conclusion, "\n"))
		sb.WriteString("\n")
	}

	return []byte(sb.String())
}

// Write renders the report and writes it to path in one call.
func (r Report) Write(path string) error {
	if err := os.WriteFile(path, r.Render(), 0o644); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}
