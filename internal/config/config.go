package config

import (
	"os"
	"strconv"

	"cafe-pos/internal/entity"
)

// Settings holds the policy knobs the order core needs. Everything is
// env-driven with local-dev defaults.
type Settings struct {
	// DefaultTaxRate applies when a create request carries no tax_rate.
	DefaultTaxRate float64

	// DeltaPolicy picks which delta a clamped stock mutation records in
	// the ledger: "requested" (as asked, the legacy behavior) or
	// "applied" (new minus previous).
	DeltaPolicy string

	// RestockOnDelete returns a deleted order's tracked quantities to
	// stock. Off by default: the legacy system kept decrements.
	RestockOnDelete bool
}

func Load() Settings {
	return Settings{
		DefaultTaxRate:  getEnvFloat("TAX_RATE", 0.05),
		DeltaPolicy:     getDeltaPolicy(),
		RestockOnDelete: os.Getenv("RESTOCK_ON_DELETE") == "true",
	}
}

func getDeltaPolicy() string {
	if os.Getenv("LEDGER_DELTA_POLICY") == entity.DeltaPolicyApplied {
		return entity.DeltaPolicyApplied
	}
	return entity.DeltaPolicyRequested
}

func getEnvFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}
