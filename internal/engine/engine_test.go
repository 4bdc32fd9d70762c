package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/config"
	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/model"
)

const vulnerableSource = `use anchor_lang::prelude::*;

#[derive(Accounts)]
pub struct Stake<'info> {
    #[account(
        init_if_needed,
        payer = user,
        token::mint = mint,
        token::authority = user,
    )]
    pub stake_account: Account<'info, TokenAccount>,
    #[account(mut)]
    pub user: Signer<'info>,
    pub mint: Account<'info, Mint>,
    pub token_program: Program<'info, Token>,
    pub system_program: Program<'info, System>,
}
`

func TestScanFileFindsVulnerablePattern(t *testing.T) {
	eng := New()
	r := eng.ScanFile(context.Background(), "stake.rs", vulnerableSource)

	require.NotNil(t, r)
	assert.Equal(t, 1, r.FilesScanned)
	assert.Equal(t, 6, r.PatternsChecked)
	require.NotEmpty(t, r.Findings)
	assert.Equal(t, "ANCHOR-001", r.Findings[0].RuleID)
	assert.Equal(t, r.Summary.Total, len(r.Findings))
	assert.NotEqual(t, model.ScoreA, r.SecurityScore)
}

func TestScanFileNeverFailsOnGarbage(t *testing.T) {
	eng := New()
	for _, src := range []string{"", "}{", "#[derive(Accounts)] nope", "\x00\x01binary"} {
		r := eng.ScanFile(context.Background(), "junk.rs", src)
		require.NotNil(t, r)
		assert.Empty(t, r.Findings)
		assert.Equal(t, model.ScoreA, r.SecurityScore)
	}
}

func TestScanFileEmptyInputSummary(t *testing.T) {
	eng := New()
	r := eng.ScanFile(context.Background(), "empty.rs", "")

	assert.Equal(t, 0, r.Summary.Total)
	for sev, n := range r.Summary.BySeverity {
		assert.Zero(t, n, "severity %s", sev)
	}
	assert.Len(t, r.Summary.BySeverity, 4, "all four buckets present even when empty")
	assert.Equal(t, model.ScoreA, r.SecurityScore)
}

func TestScanFileIdempotent(t *testing.T) {
	eng := New()
	a := eng.ScanFile(context.Background(), "stake.rs", vulnerableSource)
	b := eng.ScanFile(context.Background(), "stake.rs", vulnerableSource)
	assert.Equal(t, a.Findings, b.Findings)
	assert.Equal(t, a.SecurityScore, b.SecurityScore)
}

func TestScanFileInlineIgnore(t *testing.T) {
	suppressed := `use anchor_lang::prelude::*;

#[derive(Accounts)]
pub struct Stake<'info> {
    // anchor-shield:ignore ANCHOR-001 reason="delegate checked in handler"
    #[account(
        init_if_needed,
        payer = user,
        token::mint = mint,
    )]
    pub stake_account: Account<'info, TokenAccount>,
    pub user: Signer<'info>,
    pub mint: Account<'info, Mint>,
}
`
	eng := New()
	r := eng.ScanFile(context.Background(), "stake.rs", suppressed)
	for _, f := range r.Findings {
		assert.NotEqual(t, "ANCHOR-001", f.RuleID)
	}
}

func TestScanFileSeverityThreshold(t *testing.T) {
	cfg := config.Default()
	cfg.SeverityThreshold = "High"
	eng := NewWithConfig(cfg)

	r := eng.ScanFile(context.Background(), "stake.rs", vulnerableSource)
	for _, f := range r.Findings {
		assert.True(t, model.SeverityGTE(f.Severity, model.SeverityHigh),
			"finding %s below threshold", f.RuleID)
	}
}

func TestScanFileRuleFilter(t *testing.T) {
	cfg := config.Default()
	cfg.Rules = []string{"ANCHOR-002"}
	eng := NewWithConfig(cfg)

	r := eng.ScanFile(context.Background(), "stake.rs", vulnerableSource)
	for _, f := range r.Findings {
		assert.Equal(t, "ANCHOR-002", f.RuleID)
	}
}

func TestScanDirectory(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	root := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "programs", "vault", "src"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(root, "programs", "vault", "src", "lib.rs"),
		[]byte(vulnerableSource), 0o644))
	require.NoError(t, os.WriteFile(
		filepath.Join(root, "programs", "vault", "Cargo.toml"),
		[]byte("[dependencies]\nanchor-lang = \"0.30.1\"\n"), 0o644))

	// build artifacts must be skipped
	require.NoError(t, os.MkdirAll(filepath.Join(root, "target", "debug"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(root, "target", "debug", "gen.rs"),
		[]byte(vulnerableSource), 0o644))

	eng := New()
	r := eng.ScanDirectory(context.Background(), root)

	assert.Equal(t, 1, r.FilesScanned)
	assert.Equal(t, "0.30.1", r.AnchorVersion)
	require.NotEmpty(t, r.Findings)
	assert.Equal(t, "ANCHOR-001", r.Findings[0].RuleID)
}

func TestScanDirectorySortDeterministic(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	root := t.TempDir()
	for _, name := range []string{"b.rs", "a.rs", "c.rs"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(vulnerableSource), 0o644))
	}

	eng := New()
	first := eng.ScanDirectory(context.Background(), root)
	second := eng.ScanDirectory(context.Background(), root)

	require.Equal(t, first.Findings, second.Findings)
	for i := 1; i < len(first.Findings); i++ {
		assert.LessOrEqual(t, first.Findings[i-1].File, first.Findings[i].File)
	}
}

func TestScanDirectoryEmpty(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	eng := New()
	r := eng.ScanDirectory(context.Background(), t.TempDir())
	assert.Zero(t, r.FilesScanned)
	assert.Empty(t, r.Findings)
	assert.Equal(t, model.ScoreA, r.SecurityScore)
}
