package core_test

import (
	"errors"
	"testing"

	"liftledger/internal/core"
)

func TestSuggestDeduction(t *testing.T) {
	tests := []struct {
		balance string
		want    string
	}{
		{"9000", "1800"},    // 20% of 9000, already a round hundred
		{"15000", "2000"},   // 20% would be 3000, capped at 2000
		{"450", "100"},      // 20% is 90, rounded up to the next hundred
		{"10000", "2000"},   // exactly at the cap
		{"10050", "2000"},   // 20% is 2010, capped before rounding
		{"1", "100"},        // tiny balance still rounds up to one step
		{"4999.99", "1000"}, // 999.998 rounds up to 1000
		{"0", "0"},
		{"-500", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.balance, func(t *testing.T) {
			got := core.SuggestDeduction(d(tt.balance))
			if !got.Equal(d(tt.want)) {
				t.Errorf("SuggestDeduction(%s) = %s, want %s", tt.balance, got, tt.want)
			}
		})
	}
}

func TestValidateSchedule(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		plan    []core.InstallmentInput
		wantErr error
	}{
		{
			name:   "exact sum",
			amount: "6000",
			plan: []core.InstallmentInput{
				{Month: 1, Year: 2026, Amount: d("2000")},
				{Month: 2, Year: 2026, Amount: d("2000")},
				{Month: 3, Year: 2026, Amount: d("2000")},
			},
		},
		{
			name:   "within rounding tolerance",
			amount: "1000",
			plan: []core.InstallmentInput{
				{Month: 1, Year: 2026, Amount: d("333.33")},
				{Month: 2, Year: 2026, Amount: d("333.33")},
				{Month: 3, Year: 2026, Amount: d("333.33")},
			},
		},
		{
			name:   "sum short by more than tolerance",
			amount: "6000",
			plan: []core.InstallmentInput{
				{Month: 1, Year: 2026, Amount: d("2000")},
				{Month: 2, Year: 2026, Amount: d("2000")},
			},
			wantErr: core.ErrScheduleMismatch,
		},
		{
			name:   "sum over by more than tolerance",
			amount: "6000",
			plan: []core.InstallmentInput{
				{Month: 1, Year: 2026, Amount: d("3500")},
				{Month: 2, Year: 2026, Amount: d("3500")},
			},
			wantErr: core.ErrScheduleMismatch,
		},
		{
			name:   "duplicate month",
			amount: "4000",
			plan: []core.InstallmentInput{
				{Month: 5, Year: 2026, Amount: d("2000")},
				{Month: 5, Year: 2026, Amount: d("2000")},
			},
			wantErr: errValidation,
		},
		{
			name:   "same month different years is fine",
			amount: "4000",
			plan: []core.InstallmentInput{
				{Month: 12, Year: 2026, Amount: d("2000")},
				{Month: 12, Year: 2027, Amount: d("2000")},
			},
		},
		{
			name:    "empty plan",
			amount:  "4000",
			plan:    nil,
			wantErr: errValidation,
		},
		{
			name:   "month out of range",
			amount: "2000",
			plan: []core.InstallmentInput{
				{Month: 13, Year: 2026, Amount: d("2000")},
			},
			wantErr: errValidation,
		},
		{
			name:   "non-positive installment",
			amount: "2000",
			plan: []core.InstallmentInput{
				{Month: 1, Year: 2026, Amount: d("0")},
			},
			wantErr: errValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := core.ValidateSchedule(d(tt.amount), tt.plan)
			switch {
			case tt.wantErr == nil:
				if err != nil {
					t.Errorf("ValidateSchedule() = %v, want nil", err)
				}
			case errors.Is(tt.wantErr, errValidation):
				if !core.IsValidation(err) {
					t.Errorf("ValidateSchedule() = %v, want validation error", err)
				}
			default:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ValidateSchedule() = %v, want %v", err, tt.wantErr)
				}
			}
		})
	}
}

// sentinel for table entries that just expect any validation error
var errValidation = errors.New("validation")
