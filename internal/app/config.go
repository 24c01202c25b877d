package app

import (
	"os"

	"github.com/shopspring/decimal"
)

// Config carries the commercial parameters of the contract. They move with
// the yearly renegotiation, so they come from the environment rather than
// being compiled in.
type Config struct {
	// RatePerTon is the client's billing rate per metric ton.
	RatePerTon decimal.Decimal
	// AllowancePerDay is the per-worker daily living allowance.
	AllowancePerDay decimal.Decimal
	// HULDirectWorker is the client's direct payment per worker-role worker.
	HULDirectWorker decimal.Decimal
}

// LoadConfig reads the contract parameters from the environment, falling back
// to the current contract's figures.
func LoadConfig() Config {
	return Config{
		RatePerTon:      envDecimal("RATE_PER_TON", "167"),
		AllowancePerDay: envDecimal("ALLOWANCE_PER_DAY", "192"),
		HULDirectWorker: envDecimal("HUL_DIRECT_WORKER", "3000"),
	}
}

func envDecimal(key, fallback string) decimal.Decimal {
	if v := os.Getenv(key); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	}
	return decimal.RequireFromString(fallback)
}
