package lendkit

import (
	"github.com/shopspring/decimal"

	"github.com/jerry-enebeli/lendkit/model"
)

// FeePostings creates the customer and internal account postings for applying
// a fee: the customer address is debited and the internal income account is
// credited on its DEFAULT address. Non-positive amounts produce no postings.
func FeePostings(
	customerAccountID string,
	customerAddress string,
	denomination string,
	amount decimal.Decimal,
	incomeAccount string,
) []model.Posting {
	if amount.Sign() <= 0 {
		return nil
	}
	return []model.Posting{
		{
			Credit:         true,
			Amount:         amount,
			Denomination:   denomination,
			AccountID:      incomeAccount,
			AccountAddress: model.DefaultAddress,
			Asset:          model.DefaultAsset,
			Phase:          model.PhaseCommitted,
		},
		{
			Credit:         false,
			Amount:         amount,
			Denomination:   denomination,
			AccountID:      customerAccountID,
			AccountAddress: customerAddress,
			Asset:          model.DefaultAsset,
			Phase:          model.PhaseCommitted,
		},
	}
}

// FeeCustomInstruction wraps FeePostings into a single instruction. An empty
// customerAddress defaults to the DEFAULT address. Returns nil when the
// amount is not positive.
func FeeCustomInstruction(
	customerAccountID string,
	denomination string,
	amount decimal.Decimal,
	incomeAccount string,
	customerAddress string,
	instructionDetails map[string]string,
) []model.CustomInstruction {
	if amount.Sign() <= 0 {
		return nil
	}
	if customerAddress == "" {
		customerAddress = model.DefaultAddress
	}
	postings := FeePostings(customerAccountID, customerAddress, denomination, amount, incomeAccount)
	if len(postings) == 0 {
		return nil
	}
	return []model.CustomInstruction{
		model.NewCustomInstruction(postings, instructionDetails),
	}
}
