package lendkit

import (
	"github.com/shopspring/decimal"

	"github.com/jerry-enebeli/lendkit/model"
)

// OverpaymentHandler redirects repayment funds left over once every address in
// the hierarchy has been satisfied. Handlers are applied as a chain in the
// order the caller supplies them.
type OverpaymentHandler interface {
	HandleOverpayment(ledger Ledger, overpaymentAmount decimal.Decimal, balances model.BalanceSnapshot, denomination string) []model.Posting
}

// MultiTargetOverpaymentHandler is the supervised variant: it decides how a
// pooled residual is spread across the participating accounts and returns the
// resulting postings per account.
type MultiTargetOverpaymentHandler interface {
	HandleOverpayment(mainAccountID string, overpaymentAmount decimal.Decimal, denomination string, targets []TargetBalances) map[string][]model.Posting
}

// EarlyRepaymentFee is a fee charged when a repayment fully pays off and
// closes a loan ahead of schedule. FeeAmount sizes the fee; Charge builds the
// instructions that collect it.
type EarlyRepaymentFee interface {
	FeeName() string
	FeeAmount(ledger Ledger, balances model.BalanceSnapshot, denomination string) decimal.Decimal
	Charge(ledger Ledger, accountID string, amountToCharge decimal.Decimal, feeName string, denomination string) []model.CustomInstruction
}
