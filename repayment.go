package lendkit

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jerry-enebeli/lendkit/model"
)

var tracer = otel.Tracer("lendkit.repayment")

// RepaymentAmounts is the allocation recorded against one address: the exact
// amount consumed from the repayment budget and the amount actually posted.
// Rounded is what hits the ledger; the unrounded remainder stays in the budget
// so rounding differences self-correct across the hierarchy.
type RepaymentAmounts struct {
	Unrounded decimal.Decimal
	Rounded   decimal.Decimal
}

// DistributeRepayment allocates a repayment amount across one account's
// balances in hierarchy order. Each address is paid the lesser of its
// outstanding net and the remaining budget, rounded half-up to 2 decimal
// places for posting. The budget is depleted by the unrounded amount.
// Addresses with no debt, or whose allocation rounds to zero, produce no
// entry. The second return value is whatever budget is left once the
// hierarchy is exhausted.
//
// A nil hierarchy falls back to the standard lending hierarchy. The function
// never errors: a non-positive repayment amount yields an empty allocation
// with the input surfacing unchanged as the residual, so callers must check
// the sign before treating the residual as a true overpayment.
func DistributeRepayment(
	balances model.BalanceSnapshot,
	repaymentAmount decimal.Decimal,
	denomination string,
	repaymentHierarchy []string,
) (map[string]RepaymentAmounts, decimal.Decimal) {
	if repaymentHierarchy == nil {
		repaymentHierarchy = model.DefaultRepaymentHierarchy
	}

	remaining := repaymentAmount
	repaymentPerAddress := make(map[string]RepaymentAmounts)

	for _, address := range repaymentHierarchy {
		outstanding := balances.NetAt(address, denomination)
		if outstanding.Sign() <= 0 {
			continue
		}

		unrounded := decimal.Min(outstanding, remaining)
		if unrounded.Sign() <= 0 {
			continue
		}

		// sub-cent allocations are dropped rather than posted; the budget is
		// left intact so the amount resurfaces in the residual
		rounded := model.RoundHalfUp(unrounded, model.MoneyDecimalPlaces)
		if rounded.IsZero() {
			continue
		}

		repaymentPerAddress[address] = RepaymentAmounts{
			Unrounded: unrounded,
			Rounded:   rounded,
		}
		remaining = remaining.Sub(unrounded)
	}

	return repaymentPerAddress, remaining
}

// RedistributePostings moves a lump sum from one account address into another
// account/address as a credit-debit pair. An empty debitAddress defaults to
// the DEFAULT address. Non-positive amounts produce no postings.
func RedistributePostings(
	amount decimal.Decimal,
	denomination string,
	debitAccount string,
	creditAccount string,
	creditAddress string,
	debitAddress string,
) []model.Posting {
	if amount.Sign() <= 0 {
		return nil
	}
	if debitAddress == "" {
		debitAddress = model.DefaultAddress
	}
	return []model.Posting{
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
}

// RepaymentOptions tunes a repayment cycle. All fields are optional.
type RepaymentOptions struct {
	// Hierarchy overrides the standard repayment hierarchy.
	Hierarchy []string
	// Balances overrides the live balances observation.
	Balances model.BalanceSnapshot
	// OverpaymentFeatures handle any positive residual, in order.
	OverpaymentFeatures []OverpaymentHandler
	// EarlyRepaymentFees are charged when the repayment closes the loan early.
	EarlyRepaymentFees []EarlyRepaymentFee
}

// GenerateRepaymentPostings runs a full repayment cycle for one post-posting
// invocation: it reads the repayment amount from the DEFAULT-address effect of
// the first committed instruction, spreads it across the hierarchy, and bundles
// the resulting postings into one instruction. Any positive residual is handed
// to the overpayment feature chain, and early-repayment fees are charged when
// the incoming amount exactly closes the loan.
func GenerateRepaymentPostings(
	ctx context.Context,
	ledger Ledger,
	args PostPostingArgs,
	opts RepaymentOptions,
) ([]model.CustomInstruction, error) {
	ctx, span := tracer.Start(ctx, "GenerateRepaymentPostings")
	defer span.End()

	denomination, err := Denomination(ledger)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if len(args.PostingInstructions) == 0 {
		err := errors.New("post-posting arguments carry no posting instructions")
		span.RecordError(err)
		return nil, err
	}

	// the repayment amount always arrives on the DEFAULT address of the first
	// instruction; the pre-posting hook enforces this
	repaymentAmount := args.PostingInstructions[0].BalanceEffects().NetAt(model.DefaultAddress, denomination)
	span.SetAttributes(
		attribute.String("account.id", ledger.AccountID()),
		attribute.String("repayment.amount", repaymentAmount.String()),
	)

	balances := opts.Balances
	if balances == nil {
		balances, err = ledger.BalancesObservation(ctx)
		if err != nil {
			logrus.Errorf("fetching balances for repayment %v", err)
			span.RecordError(err)
			return nil, err
		}
	}

	hierarchy := opts.Hierarchy
	if hierarchy == nil {
		hierarchy = model.DefaultRepaymentHierarchy
	}

	var instructions []model.CustomInstruction
	overpaymentAmount := decimal.Zero

	if repaymentAmount.Sign() < 0 {
		var repaymentPerAddress map[string]RepaymentAmounts
		repaymentPerAddress, overpaymentAmount = DistributeRepayment(
			balances, repaymentAmount.Abs(), denomination, hierarchy,
		)

		var repaymentPostings []model.Posting
		for _, address := range hierarchy {
			amounts, ok := repaymentPerAddress[address]
			if !ok || amounts.Rounded.IsZero() {
				continue
			}
			repaymentPostings = append(repaymentPostings, RedistributePostings(
				amounts.Rounded,
				denomination,
				ledger.AccountID(),
				ledger.AccountID(),
				address,
				model.DefaultAddress,
			)...)
		}

		if len(repaymentPostings) > 0 {
			instructions = append(instructions, model.NewCustomInstruction(repaymentPostings, map[string]string{
				"description": "Process a repayment",
				"event":       EventProcessRepayments,
			}))
		}
	}

	if overpaymentAmount.Sign() > 0 {
		for _, feature := range opts.OverpaymentFeatures {
			overpaymentPostings := feature.HandleOverpayment(ledger, overpaymentAmount, balances, denomination)
			if len(overpaymentPostings) > 0 {
				instructions = append(instructions, model.NewCustomInstruction(overpaymentPostings, map[string]string{
					"description": "Process repayment overpayment",
					"event":       EventProcessRepayments,
				}))
			}
		}
	}

	if IsEarlyRepayment(ledger, repaymentAmount, opts.EarlyRepaymentFees, balances, denomination) {
		for _, fee := range opts.EarlyRepaymentFees {
			amountToCharge := fee.FeeAmount(ledger, balances, denomination)
			instructions = append(instructions, fee.Charge(
				ledger, ledger.AccountID(), amountToCharge, fee.FeeName(), denomination,
			)...)
		}
	}

	return instructions, nil
}
