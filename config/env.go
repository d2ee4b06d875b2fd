package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Settings carries the process configuration that the core components need.
// It is loaded once in main() and threaded into constructors explicitly;
// the core packages never read the environment themselves.
type Settings struct {
	// OperatorPercent is the fixed commission rate (percent of shift turnover)
	// paid to the operator. Applied per shift, not per sheet.
	OperatorPercent decimal.Decimal

	// ShiftStateDir is where durable per-operator shift state files live.
	ShiftStateDir string
}

func init() {
	// Load env from .env
	godotenv.Load()
}

func LoadSettings() Settings {
	return Settings{
		OperatorPercent: decimalFromEnv("OPERATOR_PERCENT", decimal.NewFromFloat(0.5)),
		ShiftStateDir:   stringFromEnv("SHIFT_STATE_DIR", "storage/shifts"),
	}
}

func stringFromEnv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func decimalFromEnv(key string, def decimal.Decimal) decimal.Decimal {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return def
	}
	return d
}

func intFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
