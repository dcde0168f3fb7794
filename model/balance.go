package model

import (
	"github.com/shopspring/decimal"
)

// Phase identifies the settlement phase a posting or balance belongs to.
type Phase string

const (
	PhaseCommitted       Phase = "COMMITTED"
	PhasePendingIncoming Phase = "PENDING_INCOMING"
	PhasePendingOutgoing Phase = "PENDING_OUTGOING"
)

const (
	// DefaultAddress is the customer-visible address money lands on before it
	// is rebalanced into a specific obligation bucket.
	DefaultAddress = "DEFAULT"
	// DefaultAsset is the asset class used for all commercial bank money.
	DefaultAsset = "COMMERCIAL_BANK_MONEY"
	// InternalContra is the clearing address used when an account funds a
	// movement that must not touch its customer-visible DEFAULT address.
	InternalContra = "INTERNAL_CONTRA"
)

// Balance addresses partitioning a lending account's obligations.
const (
	AddressPrincipal                 = "PRINCIPAL"
	AddressPrincipalOverdue          = "PRINCIPAL_OVERDUE"
	AddressInterestOverdue           = "INTEREST_OVERDUE"
	AddressPenalties                 = "PENALTIES"
	AddressPrincipalDue              = "PRINCIPAL_DUE"
	AddressInterestDue               = "INTEREST_DUE"
	AddressOverpayment               = "OVERPAYMENT"
	AddressAccruedInterestReceivable = "ACCRUED_INTEREST_RECEIVABLE"
	AddressAccruedInterestPayable    = "ACCRUED_INTEREST_PAYABLE"
)

// DefaultRepaymentHierarchy is the standard payoff priority for a single
// lending account: overdue debt first, then penalties, then due debt.
var DefaultRepaymentHierarchy = []string{
	AddressPrincipalOverdue,
	AddressInterestOverdue,
	AddressPenalties,
	AddressPrincipalDue,
	AddressInterestDue,
}

// AllOutstandingAddresses lists every address that contributes to the total
// debt of an account, used when sizing a full early repayment.
var AllOutstandingAddresses = []string{
	AddressPrincipal,
	AddressPrincipalOverdue,
	AddressPrincipalDue,
	AddressInterestOverdue,
	AddressInterestDue,
	AddressPenalties,
	AddressAccruedInterestReceivable,
}

// DefaultSupervisorRepaymentHierarchy returns the standard hierarchy reshaped
// for multi-target distribution: each address becomes its own tier, so every
// participating account is attempted at an address before any account moves on
// to the next one.
func DefaultSupervisorRepaymentHierarchy() [][]string {
	tiers := make([][]string, 0, len(DefaultRepaymentHierarchy))
	for _, address := range DefaultRepaymentHierarchy {
		tiers = append(tiers, []string{address})
	}
	return tiers
}

// BalanceCoordinate keys a single bucket of money within an account.
type BalanceCoordinate struct {
	Address      string
	Asset        string
	Denomination string
	Phase        Phase
}

// NewCoordinate builds the committed, default-asset coordinate for an address.
func NewCoordinate(address, denomination string) BalanceCoordinate {
	return BalanceCoordinate{
		Address:      address,
		Asset:        DefaultAsset,
		Denomination: denomination,
		Phase:        PhaseCommitted,
	}
}

// BalanceSnapshot is an immutable view of an account's net balances at a point
// in time, keyed by coordinate. A missing coordinate reads as zero.
type BalanceSnapshot map[BalanceCoordinate]decimal.Decimal

// At returns the net amount at the given coordinate.
func (s BalanceSnapshot) At(coordinate BalanceCoordinate) decimal.Decimal {
	if amount, ok := s[coordinate]; ok {
		return amount
	}
	return decimal.Zero
}

// NetAt returns the committed, default-asset net amount at an address.
// Positive net on a debt address means the customer still owes that amount.
func (s BalanceSnapshot) NetAt(address, denomination string) decimal.Decimal {
	return s.At(NewCoordinate(address, denomination))
}

// SumAt totals the committed net amounts across the given addresses.
func (s BalanceSnapshot) SumAt(addresses []string, denomination string) decimal.Decimal {
	total := decimal.Zero
	for _, address := range addresses {
		total = total.Add(s.NetAt(address, denomination))
	}
	return total
}
