package lendkit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jerry-enebeli/lendkit/model"
)

var accrualTracer = otel.Tracer("lendkit.accrual")

// DetermineTierBalance returns the portion of the effective balance that
// falls inside the band (tierMin, tierMax]: an amount exactly at the floor is
// excluded, an amount at the ceiling is included. Nil bounds are open: a nil
// floor starts at zero for positive bands, a nil ceiling is unbounded. Bands
// whose bounds carry opposite signs, inverted bands, and a fully unbounded
// band all yield zero.
func DetermineTierBalance(effectiveBalance decimal.Decimal, tierMin, tierMax *decimal.Decimal) decimal.Decimal {
	if tierMin == nil && tierMax == nil {
		return decimal.Zero
	}

	// an omitted bound inherits the sign of the one provided
	minNegative := tierMin != nil && tierMin.Sign() < 0
	maxNegative := tierMax != nil && tierMax.Sign() < 0
	if tierMin == nil {
		minNegative = maxNegative
	}
	if tierMax == nil {
		maxNegative = minNegative
	}
	if minNegative != maxNegative {
		return decimal.Zero
	}

	if maxNegative {
		floor := effectiveBalance
		if tierMin != nil {
			floor = *tierMin
		}
		ceiling := decimal.Zero
		if tierMax != nil {
			ceiling = *tierMax
		}
		if floor.GreaterThanOrEqual(ceiling) {
			return decimal.Zero
		}
		return decimal.Max(effectiveBalance, floor).Sub(decimal.Max(effectiveBalance, ceiling))
	}

	floor := decimal.Zero
	if tierMin != nil {
		floor = *tierMin
	}
	ceiling := effectiveBalance
	if tierMax != nil {
		ceiling = *tierMax
	}
	if ceiling.LessThanOrEqual(floor) {
		return decimal.Zero
	}
	return decimal.Min(effectiveBalance, ceiling).Sub(decimal.Min(effectiveBalance, floor))
}

// TieredAccrualAmount partitions a balance across consecutive rate tiers and
// sums each slice's daily accrual. Each tier's ceiling is the next tier's
// floor; the last tier is unbounded. Only the total is rounded, to the given
// precision, so per-tier fractions are not lost. The second return value is a
// human-readable breakdown of every tier that contributed.
func TieredAccrualAmount(
	effectiveBalance decimal.Decimal,
	effectiveTime time.Time,
	tiers TieredRates,
	daysInYear string,
	precision int32,
) (decimal.Decimal, string) {
	dailyAccrualAmount := decimal.Zero
	var breakdown strings.Builder

	for i, tier := range tiers {
		var tierMax *decimal.Decimal
		if i+1 < len(tiers) {
			tierMax = &tiers[i+1].Floor
		}

		tierBalance := DetermineTierBalance(effectiveBalance, &tiers[i].Floor, tierMax)
		if tierBalance.IsZero() {
			continue
		}

		dailyRate := model.YearlyToDailyRate(effectiveTime, tier.Rate, daysInYear)
		dailyAccrualAmount = dailyAccrualAmount.Add(tierBalance.Mul(dailyRate))
		fmt.Fprintf(&breakdown, "Accrual on %s at annual rate of %s%%. ",
			tierBalance.StringFixed(2), tier.Rate.Mul(decimal.NewFromInt(100)).StringFixed(2))
	}

	return model.RoundHalfUp(dailyAccrualAmount, precision), breakdown.String()
}

// AccrualInstruction builds the double entry for accruing a charge between a
// customer address and an internal account. Payable accruals credit the
// customer; receivable accruals debit the customer. Non-positive amounts
// produce no instruction.
func AccrualInstruction(
	customerAccount string,
	customerAddress string,
	denomination string,
	amount decimal.Decimal,
	internalAccount string,
	payable bool,
	instructionDetails map[string]string,
) []model.CustomInstruction {
	if amount.Sign() <= 0 {
		return nil
	}

	debitAccount, debitAddress := customerAccount, customerAddress
	creditAccount, creditAddress := internalAccount, model.DefaultAddress
	if payable {
		debitAccount, debitAddress = internalAccount, model.DefaultAddress
		creditAccount, creditAddress = customerAccount, customerAddress
	}

	postings := []model.Posting{
		{
			Credit:         true,
			Amount:         amount,
			Denomination:   denomination,
			AccountID:      creditAccount,
			AccountAddress: creditAddress,
			Asset:          model.DefaultAsset,
			Phase:          model.PhaseCommitted,
		},
		{
			Credit:         false,
			Amount:         amount,
			Denomination:   denomination,
			AccountID:      debitAccount,
			AccountAddress: debitAddress,
			Asset:          model.DefaultAsset,
			Phase:          model.PhaseCommitted,
		},
	}
	return []model.CustomInstruction{
		model.NewCustomInstruction(postings, instructionDetails),
	}
}

// AccrueInterest computes one day's tiered interest on the account's DEFAULT
// balance and emits the matching accrual instruction. A net positive accrual
// is payable to the customer; a net negative one is receivable from them.
func AccrueInterest(ctx context.Context, ledger Ledger, effectiveTime time.Time) ([]model.CustomInstruction, error) {
	ctx, span := accrualTracer.Start(ctx, "AccrueInterest")
	defer span.End()

	denomination, err := Denomination(ledger)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	tiers, err := TieredRatesParameter(ledger)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	payableAccount, err := ledger.Parameter(ParamAccruedInterestPayableAccount)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	receivableAccount, err := ledger.Parameter(ParamAccruedInterestReceivableAccount)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	balances, err := ledger.BalancesObservation(ctx)
	if err != nil {
		logrus.Errorf("fetching balances for accrual %v", err)
		span.RecordError(err)
		return nil, err
	}

	effectiveBalance := balances.NetAt(model.DefaultAddress, denomination)
	accrualAmount, breakdown := TieredAccrualAmount(
		effectiveBalance, effectiveTime, tiers, DaysInYear(ledger), AccrualPrecision(ledger),
	)
	span.SetAttributes(
		attribute.String("account.id", ledger.AccountID()),
		attribute.String("accrual.amount", accrualAmount.String()),
	)

	customerAddress, internalAccount := model.AddressAccruedInterestPayable, payableAccount
	if accrualAmount.Sign() < 0 {
		customerAddress, internalAccount = model.AddressAccruedInterestReceivable, receivableAccount
	}

	return AccrualInstruction(
		ledger.AccountID(),
		customerAddress,
		denomination,
		accrualAmount.Abs(),
		internalAccount,
		accrualAmount.Sign() >= 0,
		map[string]string{
			"description": strings.TrimSpace(breakdown),
			"event":       EventAccrueInterest,
		},
	), nil
}
