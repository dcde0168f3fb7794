package lendkit

import (
	"encoding/json"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/jerry-enebeli/lendkit/config"
)

// Denomination resolves the denomination for an account: the ledger parameter
// when set, otherwise the configured product default.
func Denomination(ledger Ledger) (string, error) {
	value, err := ledger.Parameter(ParamDenomination)
	if err == nil && value != "" {
		return value, nil
	}
	cnf, cerr := config.Fetch()
	if cerr == nil && cnf.Denomination != "" {
		return cnf.Denomination, nil
	}
	if err == nil {
		err = errors.New("denomination not set")
	}
	return "", errors.Wrap(err, "resolving denomination parameter")
}

// DaysInYear resolves the day-count convention, falling back to config.
func DaysInYear(ledger Ledger) string {
	value, err := ledger.Parameter(ParamDaysInYear)
	if err == nil && value != "" {
		return value
	}
	if cnf, cerr := config.Fetch(); cerr == nil {
		return cnf.DaysInYear
	}
	return config.DEFAULT_DAYS_IN_YEAR
}

// AccrualPrecision resolves the accrual rounding precision, falling back to
// config.
func AccrualPrecision(ledger Ledger) int32 {
	value, err := ledger.Parameter(ParamAccrualPrecision)
	if err == nil && value != "" {
		if precision, perr := decimal.NewFromString(value); perr == nil {
			return int32(precision.IntPart())
		}
	}
	if cnf, cerr := config.Fetch(); cerr == nil {
		return int32(cnf.AccrualPrecision)
	}
	return 5
}

// PositiveDecimalParameter fetches and parses a parameter that must be a
// positive decimal, e.g. a configured fee amount.
func PositiveDecimalParameter(ledger Ledger, name string) (decimal.Decimal, error) {
	raw, err := ledger.Parameter(name)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "fetching parameter %q", name)
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "parameter %q is not a decimal", name)
	}
	if amount.Sign() <= 0 {
		return decimal.Zero, errors.Errorf("parameter %q must be a positive decimal, got %s", name, amount)
	}
	return amount, nil
}

// RateTier is one band of a tiered rate structure: the rate applies to the
// portion of a balance above Floor, up to the next tier's floor.
type RateTier struct {
	Floor decimal.Decimal
	Rate  decimal.Decimal
}

// TieredRates is a tier list ordered by ascending floor.
type TieredRates []RateTier

type rateTierEntry struct {
	Floor string
	Rate  string
}

func (t rateTierEntry) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Floor, validation.Required, validation.By(decimalString)),
		validation.Field(&t.Rate, validation.Required, validation.By(decimalString), validation.By(nonNegativeDecimalString)),
	)
}

func decimalString(value interface{}) error {
	raw, _ := value.(string)
	if _, err := decimal.NewFromString(raw); err != nil {
		return errors.New("must be a decimal string")
	}
	return nil
}

func nonNegativeDecimalString(value interface{}) error {
	raw, _ := value.(string)
	if amount, err := decimal.NewFromString(raw); err == nil && amount.Sign() < 0 {
		return errors.New("must not be negative")
	}
	return nil
}

// ParseTieredRates parses the tiered rates parameter, a JSON object mapping
// each tier's minimum balance to its yearly rate, e.g.
// {"0.00": "0.01", "1000.00": "0.02"}. The result is sorted by tier floor.
func ParseTieredRates(raw string) (TieredRates, error) {
	var entries map[string]string
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, errors.Wrap(err, "parsing tiered rates parameter")
	}

	tiers := make(TieredRates, 0, len(entries))
	for floor, rate := range entries {
		entry := rateTierEntry{Floor: floor, Rate: rate}
		if err := entry.Validate(); err != nil {
			return nil, errors.Wrapf(err, "invalid tiered rate %q: %q", floor, rate)
		}
		tiers = append(tiers, RateTier{
			Floor: decimal.RequireFromString(floor),
			Rate:  decimal.RequireFromString(rate),
		})
	}

	sort.Slice(tiers, func(i, j int) bool {
		return tiers[i].Floor.LessThan(tiers[j].Floor)
	})
	return tiers, nil
}

// TieredRatesParameter fetches and parses the tiered interest rates parameter.
func TieredRatesParameter(ledger Ledger) (TieredRates, error) {
	raw, err := ledger.Parameter(ParamTieredInterestRates)
	if err != nil {
		return nil, errors.Wrap(err, "fetching tiered interest rates")
	}
	return ParseTieredRates(raw)
}
