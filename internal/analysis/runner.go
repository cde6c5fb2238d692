package analysis

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"eda/internal/profile"
)

// Runner executes steps and collects findings. With parallelism above one
// the steps run concurrently over the shared read-only view; findings still
// come back in declaration order, and IDs come from declaration positions,
// so a declined step leaves a gap rather than renumbering its successors.
type Runner struct {
	steps       []Step
	parallelism int
	log         *zap.Logger
}

// NewRunner builds a runner. parallelism below 1 means serial; a nil logger
// is replaced with a no-op one.
func NewRunner(steps []Step, parallelism int, log *zap.Logger) *Runner {
	if parallelism < 1 {
		parallelism = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{steps: steps, parallelism: parallelism, log: log}
}

// Run executes every step against the view and profile. Steps that decline
// contribute nothing; the rest come back ordered as declared.
func (r *Runner) Run(ctx context.Context, v *View, prof *profile.DatasetProfile) ([]Finding, error) {
	results := make([]*Finding, len(r.steps))

	if r.parallelism == 1 {
		for i, s := range r.steps {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("analysis: %w", err)
			}
			results[i] = r.runStep(i, s, v, prof)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.parallelism)
		for i, s := range r.steps {
			g.Go(func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				results[i] = r.runStep(i, s, v, prof)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("analysis: %w", err)
		}
	}

	findings := make([]Finding, 0, len(results))
	for _, f := range results {
		if f != nil {
			findings = append(findings, *f)
		}
	}
	return findings, nil
}

// runStep executes one step and stamps the finding's ID from the step's
// declaration position.
func (r *Runner) runStep(i int, s Step, v *View, prof *profile.DatasetProfile) *Finding {
	f := s.Run(v, prof)
	if f == nil {
		r.log.Debug("step produced no finding",
			zap.String("step", s.Name()),
			zap.Int("position", i+1),
		)
		return nil
	}
	f.ID = fmt.Sprintf("%02d_%s", i+1, s.Name())
	r.log.Debug("step produced finding",
		zap.String("step", s.Name()),
		zap.String("finding_id", f.ID),
		zap.String("kind", string(f.Kind)),
	)
	return f
}
