package lendkit

import (
	"context"
	"time"

	"github.com/jerry-enebeli/lendkit/model"
)

// Parameter names supplied by the ledger runtime.
const (
	ParamDenomination                     = "denomination"
	ParamDaysInYear                       = "days_in_year"
	ParamAccrualPrecision                 = "accrual_precision"
	ParamTieredInterestRates              = "tiered_interest_rates"
	ParamAccruedInterestPayableAccount    = "accrued_interest_payable_account"
	ParamAccruedInterestReceivableAccount = "accrued_interest_receivable_account"
)

// Events tagged onto generated instructions.
const (
	EventProcessRepayments = "PROCESS_REPAYMENTS"
	EventAccrueInterest    = "ACCRUE_INTEREST"
	EventApplyFees         = "APPLY_FEES"
)

// Ledger is the external runtime an account lives in. It owns balances,
// parameter storage and posting execution; this library only reads from it
// and hands back constructed instructions.
type Ledger interface {
	// AccountID returns the id of the account this ledger context is bound to.
	AccountID() string
	// BalancesObservation returns the account's live balance snapshot.
	BalancesObservation(ctx context.Context) (model.BalanceSnapshot, error)
	// Parameter returns the raw value of a configured parameter.
	Parameter(name string) (string, error)
}

// PostPostingArgs carries what the ledger hands a post-posting invocation:
// the instructions that just committed and the time they took effect.
type PostPostingArgs struct {
	EffectiveTime       time.Time
	PostingInstructions []model.CustomInstruction
}

// SupervisorPostPostingArgs is the supervised variant, with the committed
// instructions grouped per supervisee account.
type SupervisorPostPostingArgs struct {
	EffectiveTime                 time.Time
	PostingInstructionsPerAccount map[string][]model.CustomInstruction
}
