package lendkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jerry-enebeli/lendkit/model"
)

func TestTotalEarlyRepaymentAmount(t *testing.T) {
	ledger := &MockLedger{Account: "loan_1"}
	balances := snapshotOf("GBP", map[string]string{
		model.AddressPrincipal:                 "100",
		model.AddressInterestDue:               "10",
		model.AddressAccruedInterestReceivable: "0.333",
	})

	t.Run("sums outstanding debt and fees", func(t *testing.T) {
		fee, err := NewFlatFee("early_repayment_flat_fee", dec("5"), "fee-income")
		require.NoError(t, err)

		total := TotalEarlyRepaymentAmount(ledger, []EarlyRepaymentFee{fee}, balances, "GBP", 2)

		assertDecEqual(t, "115.33", total)
	})

	t.Run("zero once principal is cleared", func(t *testing.T) {
		paidOff := snapshotOf("GBP", map[string]string{model.AddressInterestDue: "10"})

		total := TotalEarlyRepaymentAmount(ledger, nil, paidOff, "GBP", 2)

		assertDecEqual(t, "0", total)
	})
}

func TestIsEarlyRepayment(t *testing.T) {
	ledger := &MockLedger{Account: "loan_1"}
	balances := snapshotOf("GBP", map[string]string{
		model.AddressPrincipal:   "100",
		model.AddressInterestDue: "10",
	})
	fee, err := NewFlatFee("early_repayment_flat_fee", dec("5"), "fee-income")
	require.NoError(t, err)
	fees := []EarlyRepaymentFee{fee}

	tests := []struct {
		name      string
		repayment string
		want      bool
	}{
		{name: "exact close-out amount", repayment: "-115", want: true},
		{name: "partial repayment", repayment: "-50", want: false},
		{name: "over the close-out amount", repayment: "-120", want: false},
		{name: "outbound amount is never a repayment", repayment: "115", want: false},
		{name: "zero amount", repayment: "0", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsEarlyRepayment(ledger, dec(tt.repayment), fees, balances, "GBP"))
		})
	}

	t.Run("never early once principal is cleared", func(t *testing.T) {
		paidOff := snapshotOf("GBP", map[string]string{model.AddressInterestDue: "10"})
		assert.False(t, IsEarlyRepayment(ledger, dec("-10"), nil, paidOff, "GBP"))
	})
}

func TestFlatFee(t *testing.T) {
	t.Run("constructor rejects bad input", func(t *testing.T) {
		_, err := NewFlatFee("fee", dec("0"), "fee-income")
		assert.Error(t, err)
		_, err = NewFlatFee("fee", dec("5"), "")
		assert.Error(t, err)
	})

	t.Run("charges into penalties", func(t *testing.T) {
		fee, err := NewFlatFee("early_repayment_flat_fee", dec("25"), "fee-income")
		require.NoError(t, err)
		ledger := &MockLedger{Account: "loan_1"}

		assertDecEqual(t, "25", fee.FeeAmount(ledger, nil, "GBP"))

		instructions := fee.Charge(ledger, "loan_1", dec("25"), fee.FeeName(), "GBP")
		require.Len(t, instructions, 1)
		assert.Equal(t, EventApplyFees, instructions[0].InstructionDetails["event"])
		assert.Equal(t, "Charge early_repayment_flat_fee", instructions[0].InstructionDetails["description"])

		effects := instructions[0].BalanceEffects()
		assertDecEqual(t, "25", effects.NetAt(model.AddressPenalties, "GBP"))
	})
}

func TestPercentageFee(t *testing.T) {
	t.Run("constructor rejects bad input", func(t *testing.T) {
		_, err := NewPercentageFee("fee", dec("-0.01"), "fee-income")
		assert.Error(t, err)
	})

	t.Run("fee amount follows outstanding principal", func(t *testing.T) {
		fee, err := NewPercentageFee("early_repayment_fee", dec("0.05"), "fee-income")
		require.NoError(t, err)
		balances := snapshotOf("GBP", map[string]string{model.AddressPrincipal: "1234.56"})

		// 5% of 1234.56, rounded half-up to 2dp
		assertDecEqual(t, "61.73", fee.FeeAmount(nil, balances, "GBP"))
	})

	t.Run("charging a zero amount yields nothing", func(t *testing.T) {
		fee, err := NewPercentageFee("early_repayment_fee", dec("0.05"), "fee-income")
		require.NoError(t, err)

		assert.Empty(t, fee.Charge(nil, "loan_1", dec("0"), fee.FeeName(), "GBP"))
	})
}
