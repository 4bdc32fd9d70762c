package verify

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"

	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/engine"
	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/model"
	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/solana"
)

const osecAPI = "https://verify.osec.io"

// Status is the verification status reported by the OtterSec verified
// programs registry.
type Status struct {
	IsVerified     bool   `json:"is_verified"`
	Message        string `json:"message"`
	OnChainHash    string `json:"on_chain_hash,omitempty"`
	ExecutableHash string `json:"executable_hash,omitempty"`
	RepoURL        string `json:"repo_url,omitempty"`
	Commit         string `json:"commit,omitempty"`
	LastVerifiedAt string `json:"last_verified_at,omitempty"`
}

// ProgramScanResult is the combined verification + scan result for one
// on-chain program.
type ProgramScanResult struct {
	ProgramID           string              `json:"program_id"`
	Verification        Status              `json:"verification"`
	AnchorProgramsFound []string            `json:"anchor_programs_found,omitempty"`
	ScanReports         []*model.ScanReport `json:"scan_reports,omitempty"`
	Error               string              `json:"error,omitempty"`
}

// Scanner runs the verify → clone → find → scan pipeline for a program
// address.
type Scanner struct {
	http   *resty.Client
	engine *engine.Engine
	log    hclog.Logger
}

func NewScanner(eng *engine.Engine, log hclog.Logger) *Scanner {
	http := resty.New().
		SetBaseURL(osecAPI).
		SetTimeout(15 * time.Second).
		SetRetryCount(2)
	return &Scanner{http: http, engine: eng, log: log}
}

// CheckVerification asks the registry whether a program has verified source.
func (s *Scanner) CheckVerification(programID string) (Status, error) {
	var status Status
	resp, err := s.http.R().SetResult(&status).Get("/status/" + programID)
	if err != nil {
		return Status{}, err
	}
	if resp.StatusCode() == 404 {
		return Status{Message: "Program not found in OtterSec registry"}, nil
	}
	if resp.IsError() {
		return Status{}, fmt.Errorf("registry returned HTTP %d", resp.StatusCode())
	}
	return status, nil
}

// ScanProgram runs the full pipeline and never returns a Go error: failures
// are reported on the result so batch callers can keep going.
func (s *Scanner) ScanProgram(ctx context.Context, programID string) ProgramScanResult {
	result := ProgramScanResult{ProgramID: programID}

	if !solana.ValidProgramID(programID) {
		result.Error = "not a valid program address (expected base58, 32-44 chars)"
		return result
	}

	status, err := s.CheckVerification(programID)
	if err != nil {
		result.Verification = Status{Message: "Could not reach the OtterSec registry"}
		result.Error = err.Error()
		return result
	}
	result.Verification = status
	if !status.IsVerified {
		return result
	}

	tmpDir, err := os.MkdirTemp("", "anchor-shield-")
	if err != nil {
		result.Error = "temp dir: " + err.Error()
		return result
	}
	defer os.RemoveAll(tmpDir)

	cloneDir := filepath.Join(tmpDir, "repo")
	if err := s.cloneVerifiedSource(ctx, status.RepoURL, status.Commit, cloneDir); err != nil {
		result.Error = "failed to clone repository: " + err.Error()
		return result
	}

	anchorDirs := findAnchorPrograms(cloneDir)
	if len(anchorDirs) == 0 {
		result.Error = "No Anchor programs found in repository. This may be a native Solana program; " +
			"anchor-shield-v2 is optimized for Anchor framework programs."
		return result
	}

	for _, dir := range anchorDirs {
		rel, err := filepath.Rel(cloneDir, dir)
		if err != nil {
			rel = dir
		}
		result.AnchorProgramsFound = append(result.AnchorProgramsFound, rel)
		report := s.engine.ScanDirectory(ctx, dir)
		report.Target = rel
		result.ScanReports = append(result.ScanReports, report)
	}
	return result
}

// cloneVerifiedSource shallow-clones the verified repo and checks out the
// verified commit, deepening the fetch when the commit is outside the
// shallow history.
func (s *Scanner) cloneVerifiedSource(ctx context.Context, repoURL, commit, dir string) error {
	repo, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:   repoURL,
		Depth: 50,
	})
	if err != nil {
		return err
	}
	if commit == "" {
		// registry did not pin a commit, scan the default branch head
		return nil
	}
	wt, err := repo.Worktree()
	if err != nil {
		return err
	}
	hash := plumbing.NewHash(commit)
	if err := wt.Checkout(&git.CheckoutOptions{Hash: hash}); err == nil {
		return nil
	}
	if s.log != nil {
		s.log.Debug("verified commit outside shallow history, fetching it", "commit", commit)
	}
	err = repo.FetchContext(ctx, &git.FetchOptions{
		RefSpecs: []gitconfig.RefSpec{gitconfig.RefSpec(commit + ":refs/heads/verified")},
		Depth:    1,
	})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return err
	}
	return wt.Checkout(&git.CheckoutOptions{Hash: hash})
}

var anchorDepPattern = regexp.MustCompile(`anchor-lang`)

// findAnchorPrograms returns directories whose Cargo.toml declares
// anchor-lang as a dependency.
func findAnchorPrograms(root string) []string {
	var dirs []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			switch d.Name() {
			case "target", "node_modules", ".git", "dist", "build":
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() != "Cargo.toml" {
			return nil
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		if anchorDepPattern.Match(b) {
			dirs = append(dirs, filepath.Dir(path))
		}
		return nil
	})
	return dirs
}
