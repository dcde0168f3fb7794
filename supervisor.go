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

var supervisorTracer = otel.Tracer("lendkit.supervisor")

// TargetBalances pairs one repayment target with its balance snapshot. Slice
// order is the allocation priority among targets within a tier, which keeps
// the ordering contract explicit instead of leaning on map iteration.
type TargetBalances struct {
	AccountID string
	Balances  model.BalanceSnapshot
}

// DistributeRepaymentAcrossTargets spreads one pooled repayment amount over
// several accounts. The hierarchy is an ordered list of tiers; money flows
// tier-major, target-minor: every target is attempted at a tier before any
// target proceeds to the next, so e.g. all accounts' overdue principal is paid
// before any account's overdue interest. One shared budget is threaded through
// the whole walk, and whatever survives it is returned as the residual.
//
// A nil hierarchy falls back to the standard hierarchy with one address per
// tier. Every target gets an entry in the result, empty when nothing was
// allocated to it.
func DistributeRepaymentAcrossTargets(
	targets []TargetBalances,
	repaymentAmount decimal.Decimal,
	denomination string,
	repaymentHierarchy [][]string,
) (map[string]map[string]RepaymentAmounts, decimal.Decimal) {
	if repaymentHierarchy == nil {
		repaymentHierarchy = model.DefaultSupervisorRepaymentHierarchy()
	}

	remaining := repaymentAmount
	repaymentsPerTarget := make(map[string]map[string]RepaymentAmounts, len(targets))
	for _, target := range targets {
		repaymentsPerTarget[target.AccountID] = map[string]RepaymentAmounts{}
	}

	for _, tier := range repaymentHierarchy {
		for _, target := range targets {
			var repaymentPerAddress map[string]RepaymentAmounts
			repaymentPerAddress, remaining = DistributeRepayment(
				target.Balances, remaining, denomination, tier,
			)
			for address, amounts := range repaymentPerAddress {
				repaymentsPerTarget[target.AccountID][address] = amounts
			}

			if remaining.IsZero() {
				return repaymentsPerTarget, decimal.Zero
			}
		}
	}

	return repaymentsPerTarget, remaining
}

// SupervisorRepaymentOptions tunes a supervised repayment cycle.
type SupervisorRepaymentOptions struct {
	// Hierarchy overrides the standard tiered hierarchy.
	Hierarchy [][]string
	// OverpaymentFeatures handle any positive residual, in order.
	OverpaymentFeatures []MultiTargetOverpaymentHandler
}

// GenerateRepaymentPostingsForTargets assembles repayment instructions per
// target for one supervised post-posting invocation. The repayment amount is
// read from the main account's first committed instruction; the allocation is
// then materialized per target, debiting the main account's DEFAULT address
// and every supervisee's INTERNAL_CONTRA clearing address, so secondary
// accounts never touch their customer-visible balance.
func GenerateRepaymentPostingsForTargets(
	ctx context.Context,
	ledger Ledger,
	sortedTargets []TargetBalances,
	args SupervisorPostPostingArgs,
	opts SupervisorRepaymentOptions,
) (map[string][]model.CustomInstruction, error) {
	_, span := supervisorTracer.Start(ctx, "GenerateRepaymentPostingsForTargets")
	defer span.End()

	denomination, err := Denomination(ledger)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	mainAccountID := ledger.AccountID()
	instructionsPerTarget := make(map[string][]model.CustomInstruction, len(sortedTargets))
	for _, target := range sortedTargets {
		instructionsPerTarget[target.AccountID] = nil
	}

	mainInstructions := args.PostingInstructionsPerAccount[mainAccountID]
	if len(mainInstructions) == 0 {
		err := errors.Errorf("no posting instructions for main account %s", mainAccountID)
		span.RecordError(err)
		return nil, err
	}

	// the repayment amount always arrives on the DEFAULT address of the main
	// account's first instruction; the pre-posting hook enforces this
	repaymentAmount := mainInstructions[0].BalanceEffects().NetAt(model.DefaultAddress, denomination)
	span.SetAttributes(
		attribute.String("account.id", mainAccountID),
		attribute.Int("targets.count", len(sortedTargets)),
		attribute.String("repayment.amount", repaymentAmount.String()),
	)
	if repaymentAmount.Sign() >= 0 {
		return instructionsPerTarget, nil
	}

	repaymentsPerTarget, overpaymentAmount := DistributeRepaymentAcrossTargets(
		sortedTargets, repaymentAmount.Abs(), denomination, opts.Hierarchy,
	)

	for _, target := range sortedTargets {
		var repaymentPostings []model.Posting
		for _, tier := range tiersOrDefault(opts.Hierarchy) {
			for _, address := range tier {
				amounts, ok := repaymentsPerTarget[target.AccountID][address]
				if !ok || amounts.Rounded.IsZero() {
					continue
				}

				debitAddress := model.InternalContra
				if target.AccountID == mainAccountID {
					debitAddress = model.DefaultAddress
				}
				repaymentPostings = append(repaymentPostings, RedistributePostings(
					amounts.Rounded,
					denomination,
					target.AccountID,
					target.AccountID,
					address,
					debitAddress,
				)...)
			}
		}

		if len(repaymentPostings) > 0 {
			instructionsPerTarget[target.AccountID] = append(instructionsPerTarget[target.AccountID],
				model.NewCustomInstruction(repaymentPostings, map[string]string{
					"description": "Process a repayment",
					"event":       EventProcessRepayments,
				}))
		}
	}

	if overpaymentAmount.Sign() > 0 && len(opts.OverpaymentFeatures) > 0 {
		overpaymentPostingsPerTarget := make(map[string][]model.Posting, len(sortedTargets))
		for _, feature := range opts.OverpaymentFeatures {
			for accountID, postings := range feature.HandleOverpayment(
				mainAccountID, overpaymentAmount, denomination, sortedTargets,
			) {
				overpaymentPostingsPerTarget[accountID] = append(overpaymentPostingsPerTarget[accountID], postings...)
			}
		}

		for _, target := range sortedTargets {
			postings := overpaymentPostingsPerTarget[target.AccountID]
			if len(postings) == 0 {
				continue
			}
			instructionsPerTarget[target.AccountID] = append(instructionsPerTarget[target.AccountID],
				model.NewCustomInstruction(postings, map[string]string{
					"description": "Process repayment overpayment",
					"event":       EventProcessRepayments,
				}))
		}
	}

	// TODO: charge early repayment fees when a pooled repayment closes every
	// target; needs a per-target split of the fee before it can be built
	logrus.Debugf("supervised repayment of %s distributed across %d targets", repaymentAmount.Abs(), len(sortedTargets))

	return instructionsPerTarget, nil
}

func tiersOrDefault(hierarchy [][]string) [][]string {
	if hierarchy == nil {
		return model.DefaultSupervisorRepaymentHierarchy()
	}
	return hierarchy
}
