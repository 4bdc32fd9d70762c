package plugins

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/anchor"
	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/model"
)

func parseSrc(t *testing.T, src string) *anchor.File {
	t.Helper()
	f := anchor.Parse("test.rs", src)
	require.NotEmpty(t, f.Structs, "fixture must parse to at least one struct")
	return f
}

const vulnerableTokenInit = `#[derive(Accounts)]
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

const safeTokenInit = `#[derive(Accounts)]
pub struct Stake<'info> {
    #[account(
        init_if_needed,
        payer = user,
        token::mint = mint,
        token::authority = user,
        constraint = stake_account.delegate.is_none(),
        constraint = stake_account.close_authority.is_none(),
    )]
    pub stake_account: Account<'info, TokenAccount>,
    #[account(mut)]
    pub user: Signer<'info>,
    pub mint: Account<'info, Mint>,
    pub token_program: Program<'info, Token>,
    pub system_program: Program<'info, System>,
}
`

func TestInitIfNeededFlagsUnvalidatedTokenAccount(t *testing.T) {
	d := &initIfNeededDetector{}
	findings, err := d.Analyze(context.Background(), parseSrc(t, vulnerableTokenInit))
	require.NoError(t, err)
	require.Len(t, findings, 1)

	f := findings[0]
	assert.Equal(t, "ANCHOR-001", f.RuleID)
	assert.Equal(t, model.SeverityHigh, f.Severity)
	assert.Equal(t, "Stake", f.Struct)
	assert.Contains(t, f.Description, "delegate")
	assert.Contains(t, f.Description, "close_authority")
	assert.NotEmpty(t, f.Fingerprint)
	assert.NotEmpty(t, f.Snippet)
}

func TestInitIfNeededSuppressedByBothConstraints(t *testing.T) {
	d := &initIfNeededDetector{}
	findings, err := d.Analyze(context.Background(), parseSrc(t, safeTokenInit))
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestInitIfNeededPartialConstraintStillFlags(t *testing.T) {
	src := `#[derive(Accounts)]
pub struct Stake<'info> {
    #[account(
        init_if_needed,
        payer = user,
        token::mint = mint,
        constraint = stake_account.delegate.is_none(),
    )]
    pub stake_account: Account<'info, TokenAccount>,
    pub user: Signer<'info>,
}
`
	d := &initIfNeededDetector{}
	findings, err := d.Analyze(context.Background(), parseSrc(t, src))
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Description, "close_authority")
	assert.NotContains(t, findings[0].Description, "delegate,")
}

func TestInitIfNeededIgnoresNonTokenAccounts(t *testing.T) {
	src := `#[derive(Accounts)]
pub struct Init<'info> {
    #[account(init_if_needed, payer = user, space = 8 + 64)]
    pub state: Account<'info, GameState>,
    #[account(mut)]
    pub user: Signer<'info>,
    pub system_program: Program<'info, System>,
}
`
	d := &initIfNeededDetector{}
	findings, err := d.Analyze(context.Background(), parseSrc(t, src))
	require.NoError(t, err)
	assert.Empty(t, findings, "plain data account init_if_needed is a different rule's concern")
}

func TestInitIfNeededAssociatedTokenVariant(t *testing.T) {
	src := `#[derive(Accounts)]
pub struct Claim<'info> {
    #[account(
        init_if_needed,
        payer = user,
        associated_token::mint = mint,
        associated_token::authority = user,
    )]
    pub ata: Account<'info, TokenAccount>,
    pub user: Signer<'info>,
    pub mint: Account<'info, Mint>,
}
`
	d := &initIfNeededDetector{}
	findings, err := d.Analyze(context.Background(), parseSrc(t, src))
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Description, "Associated_token")
}

func TestDuplicateMutableSameBaseType(t *testing.T) {
	src := `#[derive(Accounts)]
pub struct Update<'info> {
    #[account(init_if_needed, payer = user, space = 8 + 32)]
    pub primary: Account<'info, Vault>,
    #[account(mut)]
    pub secondary: Account<'info, Vault>,
    #[account(mut)]
    pub user: Signer<'info>,
    pub system_program: Program<'info, System>,
}
`
	d := &duplicateMutableDetector{}
	findings, err := d.Analyze(context.Background(), parseSrc(t, src))
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "ANCHOR-002", findings[0].RuleID)
	assert.Equal(t, model.SeverityMedium, findings[0].Severity)
	assert.Contains(t, findings[0].Description, "primary")
	assert.Contains(t, findings[0].Description, "secondary")
}

func TestDuplicateMutableDifferentBaseTypesClean(t *testing.T) {
	src := `#[derive(Accounts)]
pub struct Update<'info> {
    #[account(init_if_needed, payer = user, space = 8 + 32)]
    pub primary: Account<'info, Vault>,
    #[account(mut)]
    pub secondary: Account<'info, Treasury>,
    pub user: Signer<'info>,
}
`
	d := &duplicateMutableDetector{}
	findings, err := d.Analyze(context.Background(), parseSrc(t, src))
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestReallocPayerNotSigner(t *testing.T) {
	src := `#[derive(Accounts)]
pub struct Resize<'info> {
    #[account(mut, realloc = 8 + new_len, realloc::payer = funder, realloc::zero = false)]
    pub data: Account<'info, Record>,
    #[account(mut)]
    pub funder: AccountInfo<'info>,
    pub system_program: Program<'info, System>,
}
`
	d := &reallocPayerDetector{}
	findings, err := d.Analyze(context.Background(), parseSrc(t, src))
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "ANCHOR-003", findings[0].RuleID)
	assert.Contains(t, findings[0].Description, "funder")
}

func TestReallocPayerSignerTypeClean(t *testing.T) {
	src := `#[derive(Accounts)]
pub struct Resize<'info> {
    #[account(mut, realloc = 8 + new_len, realloc::payer = funder, realloc::zero = false)]
    pub data: Account<'info, Record>,
    #[account(mut)]
    pub funder: Signer<'info>,
    pub system_program: Program<'info, System>,
}
`
	d := &reallocPayerDetector{}
	findings, err := d.Analyze(context.Background(), parseSrc(t, src))
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestReallocPayerSignerConstraintClean(t *testing.T) {
	src := `#[derive(Accounts)]
pub struct Resize<'info> {
    #[account(mut, realloc = 8 + new_len, realloc::payer = funder, realloc::zero = false)]
    pub data: Account<'info, Record>,
    #[account(mut, signer)]
    pub funder: AccountInfo<'info>,
    pub system_program: Program<'info, System>,
}
`
	d := &reallocPayerDetector{}
	findings, err := d.Analyze(context.Background(), parseSrc(t, src))
	require.NoError(t, err)
	assert.Empty(t, findings)
}

const rawHandleFixture = `#[derive(Accounts)]
pub struct Process<'info> {
    pub data_account: AccountInfo<'info>,
    pub token_program: AccountInfo<'info>,
    pub rent: AccountInfo<'info>,
    /// CHECK: address compared against config.oracle in the handler
    pub oracle: AccountInfo<'info>,
    #[account(signer)]
    pub operator: AccountInfo<'info>,
}
`

func TestTypeCosplayAllowlistAndSuppressions(t *testing.T) {
	d := &typeCosplayDetector{}
	findings, err := d.Analyze(context.Background(), parseSrc(t, rawHandleFixture))
	require.NoError(t, err)
	// token_program: program-suffix allow-list; rent: name allow-list;
	// oracle: CHECK doc; operator: signer constraint
	require.Len(t, findings, 1)
	assert.Equal(t, "ANCHOR-004", findings[0].RuleID)
	assert.Contains(t, findings[0].Description, "data_account")
}

func TestTypeCosplayAllowsAuthorityStyleNames(t *testing.T) {
	src := `#[derive(Accounts)]
pub struct Admin<'info> {
    pub authority: AccountInfo<'info>,
    pub payer: AccountInfo<'info>,
}
`
	d := &typeCosplayDetector{}
	findings, err := d.Analyze(context.Background(), parseSrc(t, src))
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestMissingOwnerNarrowerAllowlist(t *testing.T) {
	src := `#[derive(Accounts)]
pub struct Admin<'info> {
    pub authority: AccountInfo<'info>,
    pub token_program: AccountInfo<'info>,
}
`
	d := &missingOwnerDetector{}
	findings, err := d.Analyze(context.Background(), parseSrc(t, src))
	require.NoError(t, err)
	// authority is allowed for the cosplay rule but not here
	require.Len(t, findings, 1)
	assert.Equal(t, "ANCHOR-006", findings[0].RuleID)
	assert.Equal(t, model.SeverityHigh, findings[0].Severity)
	assert.Contains(t, findings[0].Description, "authority")
}

func TestMissingOwnerSuppressedByOwnerConstraint(t *testing.T) {
	src := `#[derive(Accounts)]
pub struct Read<'info> {
    #[account(owner = token::ID)]
    pub source: AccountInfo<'info>,
}
`
	d := &missingOwnerDetector{}
	findings, err := d.Analyze(context.Background(), parseSrc(t, src))
	require.NoError(t, err)
	assert.Empty(t, findings)
}

func TestMissingOwnerDowngradeOption(t *testing.T) {
	src := `#[derive(Accounts)]
pub struct Read<'info> {
    pub raw_info: AccountInfo<'info>,
    pub unchecked: UncheckedAccount<'info>,
}
`
	d := &missingOwnerDetector{downgradeUnchecked: true}
	findings, err := d.Analyze(context.Background(), parseSrc(t, src))
	require.NoError(t, err)
	require.Len(t, findings, 2)

	bySeverity := map[string]model.Severity{}
	for _, f := range findings {
		bySeverity[f.Description] = f.Severity
	}
	var sawLow, sawHigh bool
	for desc, sev := range bySeverity {
		switch {
		case sev == model.SeverityLow:
			sawLow = true
			assert.Contains(t, desc, "UncheckedAccount")
		case sev == model.SeverityHigh:
			sawHigh = true
			assert.Contains(t, desc, "AccountInfo")
		}
	}
	assert.True(t, sawLow)
	assert.True(t, sawHigh)
}

func TestCloseReinitAcrossStructs(t *testing.T) {
	src := `#[derive(Accounts)]
pub struct CloseVault<'info> {
    #[account(mut, close = receiver)]
    pub vault: Account<'info, Vault>,
    #[account(mut)]
    pub receiver: Signer<'info>,
}

#[derive(Accounts)]
pub struct OpenVault<'info> {
    #[account(init_if_needed, payer = user, space = 8 + 64)]
    pub vault: Account<'info, Vault>,
    #[account(mut)]
    pub user: Signer<'info>,
    pub system_program: Program<'info, System>,
}
`
	d := &closeReinitDetector{}
	findings, err := d.Analyze(context.Background(), parseSrc(t, src))
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "ANCHOR-005", findings[0].RuleID)
	assert.Contains(t, findings[0].Description, "Vault")
	assert.Contains(t, findings[0].Description, "CloseVault")
	assert.Contains(t, findings[0].Description, "OpenVault")
}

func TestCloseWithPlainInitClean(t *testing.T) {
	src := `#[derive(Accounts)]
pub struct CloseVault<'info> {
    #[account(mut, close = receiver)]
    pub vault: Account<'info, Vault>,
    pub receiver: Signer<'info>,
}

#[derive(Accounts)]
pub struct OpenVault<'info> {
    #[account(init, payer = user, space = 8 + 64)]
    pub vault: Account<'info, Vault>,
    pub user: Signer<'info>,
}
`
	d := &closeReinitDetector{}
	findings, err := d.Analyze(context.Background(), parseSrc(t, src))
	require.NoError(t, err)
	assert.Empty(t, findings)
}

// Adding validation constraints must never produce more findings than the
// unconstrained form of the same source.
func TestConstraintsMonotonicallySuppress(t *testing.T) {
	d := &initIfNeededDetector{}

	vuln, err := d.Analyze(context.Background(), parseSrc(t, vulnerableTokenInit))
	require.NoError(t, err)
	safe, err := d.Analyze(context.Background(), parseSrc(t, safeTokenInit))
	require.NoError(t, err)

	assert.GreaterOrEqual(t, len(vuln), len(safe))
	assert.Empty(t, safe)
}

type panicDetector struct{}

func (panicDetector) Meta() model.RuleMeta {
	return model.RuleMeta{ID: "TEST-PANIC", Name: "panics", Severity: model.SeverityLow}
}

func (panicDetector) Analyze(ctx context.Context, src *anchor.File) ([]model.Finding, error) {
	panic("boom")
}

func TestRegistryIsolatesPanickingDetector(t *testing.T) {
	reg := NewRegistry(append(Builtin(Options{}), panicDetector{})...)
	src := parseSrc(t, vulnerableTokenInit)

	findings, diags := reg.Run(context.Background(), src)

	require.Len(t, diags, 1)
	assert.Equal(t, "TEST-PANIC", diags[0].RuleID)
	assert.Contains(t, diags[0].Message, "boom")

	// the healthy rules still report
	var ids []string
	for _, f := range findings {
		ids = append(ids, f.RuleID)
	}
	assert.Contains(t, ids, "ANCHOR-001")
}

// Running rules in any combination yields the same per-rule results as
// running them alone.
func TestDetectorIndependence(t *testing.T) {
	src := parseSrc(t, vulnerableTokenInit)
	ctx := context.Background()

	solo := map[string]int{}
	for _, d := range Builtin(Options{}) {
		fs, err := d.Analyze(ctx, src)
		require.NoError(t, err)
		solo[d.Meta().ID] = len(fs)
	}

	reg := NewRegistry(Builtin(Options{})...)
	combined, diags := reg.Run(ctx, src)
	assert.Empty(t, diags)

	byRule := map[string]int{}
	for _, f := range combined {
		byRule[f.RuleID]++
	}
	for id, n := range solo {
		assert.Equal(t, n, byRule[id], "rule %s", id)
	}
}
