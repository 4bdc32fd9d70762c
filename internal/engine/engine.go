package engine

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/anchor"
	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/config"
	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/model"
	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/plugins"
)

// Engine runs the builtin rule registry over Anchor source files.
type Engine struct {
	registry *plugins.Registry
	cfg      config.Config
}

func New() *Engine {
	return NewWithConfig(config.Default())
}

func NewWithConfig(cfg config.Config) *Engine {
	reg := plugins.NewRegistry(plugins.Builtin(plugins.Options{
		DowngradeUncheckedToLow: cfg.DowngradeUncheckedToLow,
	})...)
	return &Engine{registry: reg, cfg: cfg}
}

// Registry exposes the rule set for inspection (rules list command, tests).
func (e *Engine) Registry() *plugins.Registry { return e.registry }

// ScanFile analyzes one in-memory source buffer. It is pure over the given
// text, performs no filesystem access, and never fails: malformed input
// yields a report with zero findings, not an error.
func (e *Engine) ScanFile(ctx context.Context, path, content string) *model.ScanReport {
	start := time.Now()
	src := anchor.Parse(path, content)
	findings, diags := e.registry.Run(ctx, src)
	findings = applyInlineIgnores(findings, content)
	findings = filterBySeverity(findings, e.cfg)
	findings = filterByRules(findings, e.cfg)
	model.SortFindings(findings)
	return e.report(path, 1, findings, diags, time.Since(start))
}

// ScanDirectory walks root for .rs files and scans them in parallel. Files
// that cannot be read are skipped with a diagnostic; a run with zero
// analyzable files returns an empty report, not an error.
func (e *Engine) ScanDirectory(ctx context.Context, root string) *model.ScanReport {
	start := time.Now()
	files := discoverRustFiles(root)

	var mu sync.Mutex
	var findings []model.Finding
	var diags []model.Diagnostic

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, path := range files {
		path := path
		g.Go(func() error {
			b, err := os.ReadFile(path)
			if err != nil {
				mu.Lock()
				diags = append(diags, model.Diagnostic{File: path, Message: "unreadable, skipped: " + err.Error()})
				mu.Unlock()
				return nil
			}
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				rel = path
			}
			content := string(b)
			src := anchor.ParseCached(filepath.ToSlash(rel), content)
			fs, ds := e.registry.Run(gctx, src)
			fs = applyInlineIgnores(fs, content)
			mu.Lock()
			findings = append(findings, fs...)
			diags = append(diags, ds...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	findings = applyIgnores(findings, e.cfg)
	findings = filterBySeverity(findings, e.cfg)
	findings = filterByRules(findings, e.cfg)
	model.SortFindings(findings)

	report := e.report(root, len(files), findings, diags, time.Since(start))
	report.AnchorVersion = anchor.DetectVersion(root)
	return report
}

func (e *Engine) report(target string, filesScanned int, findings []model.Finding, diags []model.Diagnostic, elapsed time.Duration) *model.ScanReport {
	return &model.ScanReport{
		Target:          target,
		FilesScanned:    filesScanned,
		PatternsChecked: len(e.registry.Detectors()),
		Elapsed:         elapsed,
		ElapsedSeconds:  elapsed.Seconds(),
		SecurityScore:   ComputeScore(findings),
		Summary:         Summarize(findings),
		Findings:        findings,
		Diagnostics:     diags,
	}
}

// discoverRustFiles returns .rs files under root, skipping build artifacts.
func discoverRustFiles(root string) []string {
	var out []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			switch d.Name() {
			case "target", "node_modules", ".git":
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(d.Name()) == ".rs" {
			out = append(out, path)
		}
		return nil
	})
	return out
}
