package core_test

import (
	"testing"

	"liftledger/internal/core"
)

func TestNetPayable(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		advance string
		other   string
		want    string
	}{
		{"no deductions", "13000", "0", "0", "13000"},
		{"advance only", "13000", "2000", "0", "11000"},
		{"both deductions", "13000", "2000", "500", "10500"},
		{"deductions exceed base", "8000", "7000", "2000", "-1000"},
		{"zero base", "0", "0", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := core.NetPayable(d(tt.base), d(tt.advance), d(tt.other))
			if !got.Equal(d(tt.want)) {
				t.Errorf("NetPayable(%s, %s, %s) = %s, want %s",
					tt.base, tt.advance, tt.other, got, tt.want)
			}
		})
	}
}
