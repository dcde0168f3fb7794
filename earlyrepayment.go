package lendkit

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/jerry-enebeli/lendkit/model"
)

// TotalEarlyRepaymentAmount is the exact amount required to fully pay off and
// close the account: every outstanding debt address plus the early repayment
// fees that closing would trigger. Zero once principal has been cleared, since
// any repayment after the final due calculation is no longer early.
func TotalEarlyRepaymentAmount(
	ledger Ledger,
	earlyRepaymentFees []EarlyRepaymentFee,
	balances model.BalanceSnapshot,
	denomination string,
	precision int32,
) decimal.Decimal {
	if OutstandingPrincipal(balances, denomination).IsZero() {
		return decimal.Zero
	}

	total := balances.SumAt(model.AllOutstandingAddresses, denomination)
	for _, fee := range earlyRepaymentFees {
		total = total.Add(fee.FeeAmount(ledger, balances, denomination))
	}
	return model.RoundHalfUp(total, precision)
}

// IsEarlyRepayment reports whether an incoming repayment amount exactly equals
// the total required to close the loan ahead of schedule. Repayment postings
// are inbound, so the amount must be negative; anything else is not a
// repayment at all.
func IsEarlyRepayment(
	ledger Ledger,
	repaymentAmount decimal.Decimal,
	earlyRepaymentFees []EarlyRepaymentFee,
	balances model.BalanceSnapshot,
	denomination string,
) bool {
	if repaymentAmount.Sign() >= 0 {
		return false
	}
	if OutstandingPrincipal(balances, denomination).IsZero() {
		return false
	}
	total := TotalEarlyRepaymentAmount(ledger, earlyRepaymentFees, balances, denomination, model.MoneyDecimalPlaces)
	return repaymentAmount.Abs().Equal(total)
}

// FlatFee charges a fixed amount when a loan is repaid early.
type FlatFee struct {
	name          string
	amount        decimal.Decimal
	incomeAccount string
}

// NewFlatFee validates and builds a flat early repayment fee.
func NewFlatFee(name string, amount decimal.Decimal, incomeAccount string) (FlatFee, error) {
	if amount.Sign() <= 0 {
		return FlatFee{}, errors.Errorf("flat fee %q must be a positive amount, got %s", name, amount)
	}
	if incomeAccount == "" {
		return FlatFee{}, errors.Errorf("flat fee %q needs an income account", name)
	}
	return FlatFee{name: name, amount: amount, incomeAccount: incomeAccount}, nil
}

func (f FlatFee) FeeName() string { return f.name }

func (f FlatFee) FeeAmount(Ledger, model.BalanceSnapshot, string) decimal.Decimal {
	return f.amount
}

func (f FlatFee) Charge(
	_ Ledger,
	accountID string,
	amountToCharge decimal.Decimal,
	feeName string,
	denomination string,
) []model.CustomInstruction {
	return FeeCustomInstruction(accountID, denomination, amountToCharge, f.incomeAccount, model.AddressPenalties, map[string]string{
		"description": "Charge " + feeName,
		"event":       EventApplyFees,
	})
}

// PercentageFee charges a rate applied to the outstanding principal when a
// loan is repaid early.
type PercentageFee struct {
	name          string
	rate          decimal.Decimal
	incomeAccount string
}

// NewPercentageFee validates and builds a percentage early repayment fee.
// The rate is a fraction, e.g. 0.05 for a 5% fee.
func NewPercentageFee(name string, rate decimal.Decimal, incomeAccount string) (PercentageFee, error) {
	if rate.Sign() <= 0 {
		return PercentageFee{}, errors.Errorf("percentage fee %q must have a positive rate, got %s", name, rate)
	}
	if incomeAccount == "" {
		return PercentageFee{}, errors.Errorf("percentage fee %q needs an income account", name)
	}
	return PercentageFee{name: name, rate: rate, incomeAccount: incomeAccount}, nil
}

func (f PercentageFee) FeeName() string { return f.name }

func (f PercentageFee) FeeAmount(_ Ledger, balances model.BalanceSnapshot, denomination string) decimal.Decimal {
	principal := OutstandingPrincipal(balances, denomination)
	return model.RoundHalfUp(principal.Mul(f.rate), model.MoneyDecimalPlaces)
}

func (f PercentageFee) Charge(
	_ Ledger,
	accountID string,
	amountToCharge decimal.Decimal,
	feeName string,
	denomination string,
) []model.CustomInstruction {
	return FeeCustomInstruction(accountID, denomination, amountToCharge, f.incomeAccount, model.AddressPenalties, map[string]string{
		"description": "Charge " + feeName,
		"event":       EventApplyFees,
	})
}
