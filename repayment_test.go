package lendkit

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jerry-enebeli/lendkit/model"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func snapshotOf(denomination string, nets map[string]string) model.BalanceSnapshot {
	snapshot := model.BalanceSnapshot{}
	for address, amount := range nets {
		snapshot[model.NewCoordinate(address, denomination)] = dec(amount)
	}
	return snapshot
}

func assertDecEqual(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func TestDistributeRepayment(t *testing.T) {
	hierarchy := []string{"ADDRESS_1", "ADDRESS_2", "ADDRESS_3"}

	tests := []struct {
		name            string
		balances        map[string]string
		repayment       string
		wantPerAddress  map[string][2]string // address -> {unrounded, rounded}
		wantOverpayment string
	}{
		{
			name:            "zero repayment allocates nothing",
			balances:        map[string]string{"ADDRESS_1": "10"},
			repayment:       "0",
			wantPerAddress:  map[string][2]string{},
			wantOverpayment: "0",
		},
		{
			name:      "exact repayment pays everything",
			balances:  map[string]string{"ADDRESS_1": "40", "ADDRESS_2": "20", "ADDRESS_3": "30"},
			repayment: "90",
			wantPerAddress: map[string][2]string{
				"ADDRESS_1": {"40", "40"},
				"ADDRESS_2": {"20", "20"},
				"ADDRESS_3": {"30", "30"},
			},
			wantOverpayment: "0",
		},
		{
			name:      "earlier addresses are paid before later ones",
			balances:  map[string]string{"ADDRESS_1": "40", "ADDRESS_2": "20", "ADDRESS_3": "30"},
			repayment: "50",
			wantPerAddress: map[string][2]string{
				"ADDRESS_1": {"40", "40"},
				"ADDRESS_2": {"10", "10"},
			},
			wantOverpayment: "0",
		},
		{
			name:      "surplus surfaces as overpayment",
			balances:  map[string]string{"ADDRESS_1": "40"},
			repayment: "55.50",
			wantPerAddress: map[string][2]string{
				"ADDRESS_1": {"40", "40"},
			},
			wantOverpayment: "15.50",
		},
		{
			name:      "unrounded debit self-corrects repeated round ups",
			balances:  map[string]string{"ADDRESS_1": "0.015", "ADDRESS_2": "0.015", "ADDRESS_3": "0.015"},
			repayment: "0.03",
			wantPerAddress: map[string][2]string{
				"ADDRESS_1": {"0.015", "0.02"},
				"ADDRESS_2": {"0.015", "0.02"},
			},
			wantOverpayment: "0",
		},
		{
			name:            "sub-cent debt rounds to zero and is dropped",
			balances:        map[string]string{"ADDRESS_1": "0.0042"},
			repayment:       "0.01",
			wantPerAddress:  map[string][2]string{},
			wantOverpayment: "0.01",
		},
		{
			name:      "sub-cent tail after a full payoff",
			balances:  map[string]string{"ADDRESS_1": "10.00", "ADDRESS_2": "0.0052", "ADDRESS_3": "0.0052"},
			repayment: "10.01",
			wantPerAddress: map[string][2]string{
				"ADDRESS_1": {"10.00", "10.00"},
				"ADDRESS_2": {"0.0052", "0.01"},
			},
			wantOverpayment: "0.0048",
		},
		{
			name:            "zero balances produce no entries",
			balances:        map[string]string{"ADDRESS_1": "0", "ADDRESS_2": "-5"},
			repayment:       "10",
			wantPerAddress:  map[string][2]string{},
			wantOverpayment: "10",
		},
		{
			// negative amounts flow through untouched rather than erroring;
			// callers must check the sign before treating this as overpayment
			name:            "negative repayment passes through as residual",
			balances:        map[string]string{"ADDRESS_1": "10"},
			repayment:       "-3",
			wantPerAddress:  map[string][2]string{},
			wantOverpayment: "-3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			balances := snapshotOf("GBP", tt.balances)
			perAddress, overpayment := DistributeRepayment(balances, dec(tt.repayment), "GBP", hierarchy)

			assert.Len(t, perAddress, len(tt.wantPerAddress))
			for address, amounts := range tt.wantPerAddress {
				got, ok := perAddress[address]
				require.True(t, ok, "missing allocation for %s", address)
				assertDecEqual(t, amounts[0], got.Unrounded)
				assertDecEqual(t, amounts[1], got.Rounded)
			}
			assertDecEqual(t, tt.wantOverpayment, overpayment)
		})
	}
}

func TestDistributeRepaymentConservesMoney(t *testing.T) {
	balances := snapshotOf("GBP", map[string]string{
		"ADDRESS_1": "12.3456",
		"ADDRESS_2": "0.0071",
		"ADDRESS_3": "99.99",
	})
	repayment := dec("55.5555")

	perAddress, overpayment := DistributeRepayment(balances, repayment, "GBP", []string{"ADDRESS_1", "ADDRESS_2", "ADDRESS_3"})

	total := overpayment
	for _, amounts := range perAddress {
		total = total.Add(amounts.Unrounded)
	}
	// the unrounded ledger balances exactly for any decimal input
	assert.True(t, total.Equal(repayment), "unrounded total %s != repayment %s", total, repayment)
}

func TestDistributeRepaymentDefaultHierarchy(t *testing.T) {
	balances := snapshotOf("GBP", map[string]string{
		model.AddressPrincipalOverdue: "25",
		model.AddressInterestDue:      "5",
	})

	perAddress, overpayment := DistributeRepayment(balances, dec("27"), "GBP", nil)

	assert.Len(t, perAddress, 2)
	assertDecEqual(t, "25", perAddress[model.AddressPrincipalOverdue].Rounded)
	assertDecEqual(t, "2", perAddress[model.AddressInterestDue].Rounded)
	assertDecEqual(t, "0", overpayment)
}

func TestRedistributePostings(t *testing.T) {
	t.Run("non-positive amounts produce no postings", func(t *testing.T) {
		assert.Empty(t, RedistributePostings(dec("0"), "GBP", "acc", "acc", "ADDRESS_1", ""))
		assert.Empty(t, RedistributePostings(dec("-1"), "GBP", "acc", "acc", "ADDRESS_1", ""))
	})

	t.Run("positive amount yields one credit-debit pair", func(t *testing.T) {
		postings := RedistributePostings(dec("12.34"), "GBP", "debit-acc", "credit-acc", "ADDRESS_1", "")

		require.Len(t, postings, 2)
		credit, debit := postings[0], postings[1]
		assert.True(t, credit.Credit)
		assert.Equal(t, "credit-acc", credit.AccountID)
		assert.Equal(t, "ADDRESS_1", credit.AccountAddress)
		assert.False(t, debit.Credit)
		assert.Equal(t, "debit-acc", debit.AccountID)
		assert.Equal(t, model.DefaultAddress, debit.AccountAddress)
		assertDecEqual(t, "12.34", credit.Amount)
		assertDecEqual(t, "12.34", debit.Amount)
	})
}

func inboundRepayment(accountID, denomination, amount string) model.CustomInstruction {
	return model.NewCustomInstruction([]model.Posting{{
		Credit:         true,
		Amount:         dec(amount),
		Denomination:   denomination,
		AccountID:      accountID,
		AccountAddress: model.DefaultAddress,
		Asset:          model.DefaultAsset,
		Phase:          model.PhaseCommitted,
	}}, nil)
}

func TestGenerateRepaymentPostings(t *testing.T) {
	accountID := gofakeit.UUID()
	ledger := &MockLedger{
		Account: accountID,
		Balances: snapshotOf("GBP", map[string]string{
			model.AddressPrincipalOverdue: "40",
			model.AddressInterestOverdue:  "20",
			model.AddressPrincipalDue:     "30",
			model.AddressPrincipal:        "500",
		}),
		Params: map[string]string{ParamDenomination: "GBP"},
	}
	args := PostPostingArgs{
		PostingInstructions: []model.CustomInstruction{inboundRepayment(accountID, "GBP", "100")},
	}

	instructions, err := GenerateRepaymentPostings(context.Background(), ledger, args, RepaymentOptions{
		OverpaymentFeatures: []OverpaymentHandler{PrincipalOverpayment{}},
	})

	require.NoError(t, err)
	require.Len(t, instructions, 2)

	repayment := instructions[0]
	assert.Equal(t, EventProcessRepayments, repayment.InstructionDetails["event"])
	assert.Equal(t, "Process a repayment", repayment.InstructionDetails["description"])
	// three addresses paid, one credit-debit pair each
	require.Len(t, repayment.Postings, 6)
	effects := repayment.BalanceEffects()
	assertDecEqual(t, "-40", effects.NetAt(model.AddressPrincipalOverdue, "GBP"))
	assertDecEqual(t, "-20", effects.NetAt(model.AddressInterestOverdue, "GBP"))
	assertDecEqual(t, "-30", effects.NetAt(model.AddressPrincipalDue, "GBP"))
	assertDecEqual(t, "90", effects.NetAt(model.DefaultAddress, "GBP"))

	overpayment := instructions[1]
	assert.Equal(t, "Process repayment overpayment", overpayment.InstructionDetails["description"])
	overpaymentEffects := overpayment.BalanceEffects()
	// the residual 10 pays down principal and is mirrored into the tracker
	assertDecEqual(t, "-10", overpaymentEffects.NetAt(model.AddressPrincipal, "GBP"))
	assertDecEqual(t, "10", overpaymentEffects.NetAt(model.AddressOverpayment, "GBP"))
}

func TestGenerateRepaymentPostingsOutboundAmountIsIgnored(t *testing.T) {
	accountID := gofakeit.UUID()
	ledger := &MockLedger{
		Account:  accountID,
		Balances: snapshotOf("GBP", map[string]string{model.AddressPrincipalDue: "30"}),
		Params:   map[string]string{ParamDenomination: "GBP"},
	}
	withdrawal := model.NewCustomInstruction([]model.Posting{{
		Credit:         false,
		Amount:         dec("100"),
		Denomination:   "GBP",
		AccountID:      accountID,
		AccountAddress: model.DefaultAddress,
		Asset:          model.DefaultAsset,
		Phase:          model.PhaseCommitted,
	}}, nil)

	instructions, err := GenerateRepaymentPostings(context.Background(), ledger, PostPostingArgs{
		PostingInstructions: []model.CustomInstruction{withdrawal},
	}, RepaymentOptions{})

	require.NoError(t, err)
	assert.Empty(t, instructions)
}

func TestGenerateRepaymentPostingsNoInstructions(t *testing.T) {
	ledger := &MockLedger{
		Account: gofakeit.UUID(),
		Params:  map[string]string{ParamDenomination: "GBP"},
	}

	_, err := GenerateRepaymentPostings(context.Background(), ledger, PostPostingArgs{}, RepaymentOptions{})

	assert.Error(t, err)
}
