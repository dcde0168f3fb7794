package model

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Posting is one leg of a double entry against a single coordinate.
type Posting struct {
	Credit         bool            `json:"credit"`
	Amount         decimal.Decimal `json:"amount"`
	Denomination   string          `json:"denomination"`
	AccountID      string          `json:"account_id"`
	AccountAddress string          `json:"account_address"`
	Asset          string          `json:"asset"`
	Phase          Phase           `json:"phase"`
}

// CustomInstruction bundles a balanced set of postings with the metadata that
// describes why they were made. The ledger treats an instruction atomically.
type CustomInstruction struct {
	InstructionID      string            `json:"id"`
	Postings           []Posting         `json:"postings"`
	InstructionDetails map[string]string `json:"instruction_details,omitempty"`
}

// GenerateUUIDWithSuffix generates a UUID with a given module name as a suffix.
// This is useful for creating unique identifiers with context-specific prefixes.
func GenerateUUIDWithSuffix(module string) string {
	id := uuid.New()
	return fmt.Sprintf("%s_%s", module, id.String())
}

// NewCustomInstruction mints an instruction around the given postings.
func NewCustomInstruction(postings []Posting, details map[string]string) CustomInstruction {
	return CustomInstruction{
		InstructionID:      GenerateUUIDWithSuffix("instruction"),
		Postings:           postings,
		InstructionDetails: details,
	}
}

// BalanceEffects nets the instruction's postings per coordinate using the
// asset-side convention: debits increase net, credits decrease it. An inbound
// repayment therefore shows up as a negative net on the DEFAULT address.
func (ci CustomInstruction) BalanceEffects() BalanceSnapshot {
	effects := make(BalanceSnapshot, len(ci.Postings))
	for _, posting := range ci.Postings {
		coordinate := BalanceCoordinate{
			Address:      posting.AccountAddress,
			Asset:        posting.Asset,
			Denomination: posting.Denomination,
			Phase:        posting.Phase,
		}
		if posting.Credit {
			effects[coordinate] = effects.At(coordinate).Sub(posting.Amount)
		} else {
			effects[coordinate] = effects.At(coordinate).Add(posting.Amount)
		}
	}
	return effects
}
