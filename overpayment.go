package lendkit

import (
	"github.com/shopspring/decimal"

	"github.com/jerry-enebeli/lendkit/model"
)

// OutstandingPrincipal returns the principal yet to be repaid.
func OutstandingPrincipal(balances model.BalanceSnapshot, denomination string) decimal.Decimal {
	return balances.NetAt(model.AddressPrincipal, denomination)
}

// TotalOutstandingDebt totals every outstanding address, rounded for posting.
func TotalOutstandingDebt(balances model.BalanceSnapshot, denomination string, precision int32) decimal.Decimal {
	return model.RoundHalfUp(balances.SumAt(model.AllOutstandingAddresses, denomination), precision)
}

// TotalDueAmount totals the due addresses only, rounded for posting.
func TotalDueAmount(balances model.BalanceSnapshot, denomination string, precision int32) decimal.Decimal {
	due := []string{model.AddressPrincipalDue, model.AddressInterestDue}
	return model.RoundHalfUp(balances.SumAt(due, denomination), precision)
}

// PrincipalOverpayment is the standard overpayment feature: the residual pays
// down principal first, mirrored into the OVERPAYMENT tracker, and anything
// left after principal goes towards accrued interest.
type PrincipalOverpayment struct{}

// HandleOverpayment rebalances an overpayment that has landed on the DEFAULT
// address into PRINCIPAL, records it against the OVERPAYMENT tracker via the
// INTERNAL_CONTRA clearing address, then repays accrued interest with any
// remainder. Returns nothing when the amount is not positive or there is
// nothing left to pay down.
func (PrincipalOverpayment) HandleOverpayment(
	ledger Ledger,
	overpaymentAmount decimal.Decimal,
	balances model.BalanceSnapshot,
	denomination string,
) []model.Posting {
	if overpaymentAmount.Sign() <= 0 {
		return nil
	}

	accountID := ledger.AccountID()
	remaining := overpaymentAmount

	var postings []model.Posting
	principal := OutstandingPrincipal(balances, denomination)
	if principalPortion := decimal.Min(overpaymentAmount, principal); principalPortion.Sign() > 0 {
		postings = append(postings, RedistributePostings(
			principalPortion, denomination,
			accountID, accountID,
			model.AddressPrincipal, model.DefaultAddress,
		)...)
		postings = append(postings, RedistributePostings(
			principalPortion, denomination,
			accountID, accountID,
			model.InternalContra, model.AddressOverpayment,
		)...)
		remaining = remaining.Sub(principalPortion)
	}

	accruedInterest := balances.NetAt(model.AddressAccruedInterestReceivable, denomination)
	if interestPortion := decimal.Min(remaining, accruedInterest); interestPortion.Sign() > 0 {
		postings = append(postings, RedistributePostings(
			model.RoundHalfUp(interestPortion, model.MoneyDecimalPlaces), denomination,
			accountID, accountID,
			model.AddressAccruedInterestReceivable, model.DefaultAddress,
		)...)
	}

	return postings
}
