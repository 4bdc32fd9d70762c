package plugins

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/anchor"
	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/model"
)

// Detector is one structural rule. Detectors are pure over the (source text,
// field registry) pair: no shared mutable state, and no detector may observe
// another's output. That independence is what lets the registry run them in
// parallel with zero coordination.
type Detector interface {
	Meta() model.RuleMeta
	Analyze(ctx context.Context, src *anchor.File) ([]model.Finding, error)
}

// Options tunes builtin rule construction.
type Options struct {
	// DowngradeUncheckedToLow lowers ANCHOR-006 findings on UncheckedAccount
	// fields from High to Low. The type is an explicitly-unchecked idiom in
	// the ecosystem, which some teams prefer not to treat as High.
	DowngradeUncheckedToLow bool
}

// Builtin returns the ordered builtin rule set. The list is explicit and
// caller-visible so rules can be inspected and tested in isolation.
func Builtin(opts Options) []Detector {
	return []Detector{
		&initIfNeededDetector{},
		&duplicateMutableDetector{},
		&reallocPayerDetector{},
		&typeCosplayDetector{},
		&closeReinitDetector{},
		&missingOwnerDetector{downgradeUnchecked: opts.DowngradeUncheckedToLow},
	}
}

type Registry struct{ detectors []Detector }

func NewRegistry(detectors ...Detector) *Registry {
	return &Registry{detectors: detectors}
}

func (r *Registry) Register(d Detector) { r.detectors = append(r.detectors, d) }

func (r *Registry) Detectors() []Detector { return r.detectors }

// Run invokes every registered rule against the same extraction result and
// concatenates results. A failing or panicking detector is isolated: it
// contributes zero findings plus a diagnostic, never a scan error.
func (r *Registry) Run(ctx context.Context, src *anchor.File) ([]model.Finding, []model.Diagnostic) {
	cpu := runtime.NumCPU()
	if cpu < 2 {
		cpu = 2
	}
	type res struct {
		fs   []model.Finding
		diag *model.Diagnostic
	}
	ch := make(chan res, len(r.detectors))
	var wg sync.WaitGroup
	sem := make(chan struct{}, cpu)
	for _, d := range r.detectors {
		d := d
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			defer func() {
				if rec := recover(); rec != nil {
					ch <- res{diag: &model.Diagnostic{
						RuleID:  d.Meta().ID,
						File:    src.Path,
						Message: fmt.Sprintf("detector panicked: %v", rec),
					}}
				}
			}()
			fs, err := d.Analyze(ctx, src)
			if err != nil {
				ch <- res{diag: &model.Diagnostic{
					RuleID:  d.Meta().ID,
					File:    src.Path,
					Message: err.Error(),
				}}
				return
			}
			ch <- res{fs: fs}
		}()
	}
	wg.Wait()
	close(ch)
	var out []model.Finding
	var diags []model.Diagnostic
	for r := range ch {
		out = append(out, r.fs...)
		if r.diag != nil {
			diags = append(diags, *r.diag)
		}
	}
	return out, diags
}
