package core_test

import (
	"testing"

	"liftledger/internal/core"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestWalletBalance(t *testing.T) {
	tests := []struct {
		name string
		txs  []core.PettyCashTx
		want string
	}{
		{
			name: "empty log",
			txs:  nil,
			want: "0",
		},
		{
			name: "approved deposits only",
			txs: []core.PettyCashTx{
				{Type: core.TxDeposit, Status: core.TxApproved, Amount: d("10000")},
				{Type: core.TxDeposit, Status: core.TxApproved, Amount: d("2500.50")},
			},
			want: "12500.50",
		},
		{
			name: "pending expense already deducts",
			txs: []core.PettyCashTx{
				{Type: core.TxDeposit, Status: core.TxApproved, Amount: d("10000")},
				{Type: core.TxExpense, Status: core.TxPending, Amount: d("1200")},
			},
			want: "8800",
		},
		{
			name: "approving a pending expense leaves balance unchanged",
			txs: []core.PettyCashTx{
				{Type: core.TxDeposit, Status: core.TxApproved, Amount: d("10000")},
				{Type: core.TxExpense, Status: core.TxApproved, Amount: d("1200")},
			},
			want: "8800",
		},
		{
			name: "rejecting a pending expense restores the amount",
			txs: []core.PettyCashTx{
				{Type: core.TxDeposit, Status: core.TxApproved, Amount: d("10000")},
				{Type: core.TxExpense, Status: core.TxRejected, Amount: d("1200")},
			},
			want: "10000",
		},
		{
			name: "mixed log",
			txs: []core.PettyCashTx{
				{Type: core.TxDeposit, Status: core.TxApproved, Amount: d("50000")},
				{Type: core.TxExpense, Status: core.TxApproved, Amount: d("7000")},
				{Type: core.TxExpense, Status: core.TxPending, Amount: d("1500")},
				{Type: core.TxExpense, Status: core.TxRejected, Amount: d("900")},
				{Type: core.TxDeposit, Status: core.TxApproved, Amount: d("3000")},
			},
			want: "44500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := core.WalletBalance(tt.txs)
			if !got.Equal(d(tt.want)) {
				t.Errorf("WalletBalance() = %s, want %s", got, tt.want)
			}
		})
	}
}

// Status transitions only ever change how an already-deducted amount is
// classified; the deduction itself happened at entry time. Approving must be
// a no-op on the balance, rejecting must add the amount back.
func TestWalletBalance_TransitionProperties(t *testing.T) {
	base := []core.PettyCashTx{
		{Type: core.TxDeposit, Status: core.TxApproved, Amount: d("20000")},
		{Type: core.TxExpense, Status: core.TxApproved, Amount: d("4000")},
	}
	amount := d("1750")

	pending := append(append([]core.PettyCashTx{}, base...),
		core.PettyCashTx{Type: core.TxExpense, Status: core.TxPending, Amount: amount})
	approved := append(append([]core.PettyCashTx{}, base...),
		core.PettyCashTx{Type: core.TxExpense, Status: core.TxApproved, Amount: amount})
	rejected := append(append([]core.PettyCashTx{}, base...),
		core.PettyCashTx{Type: core.TxExpense, Status: core.TxRejected, Amount: amount})

	before := core.WalletBalance(pending)
	if got := core.WalletBalance(approved); !got.Equal(before) {
		t.Errorf("approval changed balance: %s -> %s", before, got)
	}
	if got := core.WalletBalance(rejected); !got.Equal(before.Add(amount)) {
		t.Errorf("rejection balance = %s, want %s", got, before.Add(amount))
	}
}
