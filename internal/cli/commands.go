package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/config"
	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/engine"
	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/github"
	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/logging"
	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/model"
	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/report"
	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/semantic"
	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/tui"
)

func AddCommands(root *cobra.Command) {
	root.AddCommand(newScanCmd())
	root.AddCommand(newProgramCmd())
	root.AddCommand(newRulesCmd())
	root.AddCommand(newInitCmd())
}

// scanOutput wraps the static report with the optional semantic finding list
// for machine-readable formats.
type scanOutput struct {
	*model.ScanReport
	SemanticFindings []semantic.Finding `json:"semantic_findings,omitempty"`
}

func newScanCmd() *cobra.Command {
	var (
		format        string
		outputFile    string
		failOn        string
		budgetMs      int
		useTUI        bool
		useSemantic   bool
		baselinePath  string
		writeBaseline string
	)
	cmd := &cobra.Command{
		Use:   "scan [path|github-url]",
		Short: "Scan Anchor program source for vulnerability patterns",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "."
			if len(args) > 0 {
				target = args[0]
			}
			log := logging.New("anchor-shield")

			cfg, cfgPath, err := config.Load(startDirFor(target))
			if err != nil {
				return err
			}
			if cfgPath != "" {
				log.Debug("loaded config", "path", cfgPath)
			}
			if budgetMs > 0 {
				cfg.TimeBudgetMs = budgetMs
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(cfg.TimeBudgetMs)*time.Millisecond)
			defer cancel()

			eng := engine.NewWithConfig(cfg)

			var (
				result   *model.ScanReport
				contents map[string]string
			)
			if github.IsRepoURL(target) {
				gh := github.NewClient(ctx, log)
				contents, err = gh.FetchRepoFiles(ctx, target, 0)
				if err != nil {
					return err
				}
				result = scanFileSet(ctx, eng, target, contents)
			} else {
				info, statErr := os.Stat(target)
				if statErr != nil {
					return fmt.Errorf("cannot access %s: %w", target, statErr)
				}
				if info.IsDir() {
					result = eng.ScanDirectory(ctx, target)
				} else {
					data, readErr := os.ReadFile(target)
					if readErr != nil {
						return fmt.Errorf("cannot read %s: %w", target, readErr)
					}
					result = eng.ScanFile(ctx, target, string(data))
				}
			}

			if baselinePath != "" {
				base, loadErr := engine.LoadBaseline(baselinePath)
				if loadErr != nil {
					return loadErr
				}
				result.Findings = engine.FilterByBaseline(result.Findings, base)
				result.Summary = engine.Summarize(result.Findings)
				result.SecurityScore = engine.ComputeScore(result.Findings)
			}

			out := scanOutput{ScanReport: result}
			if useSemantic {
				out.SemanticFindings = runSemantic(log, target, contents)
			}

			if writeBaseline != "" {
				if err := engine.WriteBaseline(writeBaseline, result.Findings); err != nil {
					return err
				}
			}

			if useTUI {
				return tui.Run(result.Findings)
			}
			if err := emit(cmd, format, outputFile, out); err != nil {
				return err
			}

			if failOn != "" {
				threshold := model.ParseSeverity(failOn)
				for _, f := range result.Findings {
					if model.SeverityGTE(f.Severity, threshold) {
						return fmt.Errorf("findings at or above %s severity", threshold)
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "terminal", "Output format: terminal|json|sarif|html")
	cmd.Flags().StringVarP(&outputFile, "out", "o", "", "Write report to file instead of stdout")
	cmd.Flags().StringVar(&failOn, "fail-on", "", "Exit non-zero when a finding of this severity or higher exists")
	cmd.Flags().IntVar(&budgetMs, "budget-ms", 0, "Override the scan time budget in milliseconds")
	cmd.Flags().BoolVar(&useTUI, "tui", false, "Browse findings interactively")
	cmd.Flags().BoolVar(&useSemantic, "semantic", false, "Run LLM-backed logic analysis in addition to pattern detection")
	cmd.Flags().StringVar(&baselinePath, "baseline", "", "Suppress findings whose fingerprints appear in this baseline file")
	cmd.Flags().StringVar(&writeBaseline, "write-baseline", "", "Write finding fingerprints to a baseline file")
	return cmd
}

// startDirFor returns the directory to begin the config walk-up from.
func startDirFor(target string) string {
	if github.IsRepoURL(target) {
		return "."
	}
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		return filepath.Dir(target)
	}
	return target
}

// scanFileSet scans an in-memory file map, as fetched from a remote repo,
// and merges the per-file reports.
func scanFileSet(ctx context.Context, eng *engine.Engine, target string, files map[string]string) *model.ScanReport {
	start := time.Now()
	merged := &model.ScanReport{Target: target, PatternsChecked: len(eng.Registry().Detectors())}
	for path, content := range files {
		r := eng.ScanFile(ctx, path, content)
		merged.Findings = append(merged.Findings, r.Findings...)
		merged.Diagnostics = append(merged.Diagnostics, r.Diagnostics...)
		merged.FilesScanned++
	}
	model.SortFindings(merged.Findings)
	merged.Summary = engine.Summarize(merged.Findings)
	merged.SecurityScore = engine.ComputeScore(merged.Findings)
	merged.Elapsed = time.Since(start)
	merged.ElapsedSeconds = merged.Elapsed.Seconds()
	return merged
}

// runSemantic analyzes either the fetched file set or the local target.
func runSemantic(log hclog.Logger, target string, contents map[string]string) []semantic.Finding {
	analyzer := semantic.NewAnalyzer(log.Named("semantic"))
	if contents != nil {
		var all []semantic.Finding
		for path, content := range contents {
			all = append(all, analyzer.Analyze(content, path)...)
			if analyzer.IsDemoMode() {
				break
			}
		}
		return all
	}

	info, err := os.Stat(target)
	if err != nil {
		return nil
	}
	if !info.IsDir() {
		data, err := os.ReadFile(target)
		if err != nil {
			log.Warn("semantic analysis skipped", "error", err)
			return nil
		}
		return analyzer.Analyze(string(data), target)
	}

	var all []semantic.Finding
	_ = filepath.WalkDir(target, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".rs") {
			return nil
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil
		}
		all = append(all, analyzer.Analyze(string(data), path)...)
		if analyzer.IsDemoMode() {
			return filepath.SkipAll
		}
		return nil
	})
	return all
}

func emit(cmd *cobra.Command, format, outputFile string, out scanOutput) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case "json":
		data, err = json.MarshalIndent(out, "", "  ")
	case "sarif":
		data, err = report.ToSARIF(out.Findings)
	case "html":
		data, err = report.ToHTML(out.ScanReport)
	default:
		text := report.RenderTerminal(out.ScanReport)
		if len(out.SemanticFindings) > 0 {
			text += renderSemantic(out.SemanticFindings)
		}
		data = []byte(text)
	}
	if err != nil {
		return err
	}
	if outputFile != "" {
		return os.WriteFile(outputFile, data, 0o644)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func renderSemantic(findings []semantic.Finding) string {
	var b strings.Builder
	b.WriteString("\nSemantic analysis:\n")
	for _, f := range findings {
		fmt.Fprintf(&b, "  %s [%s] %s (fn %s, confidence %.2f)\n", f.ID, f.Severity, f.Title, f.Function, f.Confidence)
		if f.Description != "" {
			fmt.Fprintf(&b, "      %s\n", firstLine(f.Description))
		}
	}
	return b.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
