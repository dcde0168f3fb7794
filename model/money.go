package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Day-count conventions for converting yearly rates to daily rates.
const (
	DaysInYear360    = "360"
	DaysInYear365    = "365"
	DaysInYear366    = "366"
	DaysInYearActual = "actual"
)

// RateDecimalPlaces is the precision daily rates are rounded to.
const RateDecimalPlaces = 10

// MoneyDecimalPlaces is the precision posted monetary amounts are rounded to.
const MoneyDecimalPlaces = 2

// RoundHalfUp rounds an amount to the given number of decimal places using the
// commercial rule: ties round away from zero, so 0.015 becomes 0.02.
func RoundHalfUp(amount decimal.Decimal, places int32) decimal.Decimal {
	return amount.Round(places)
}

// YearlyToDailyRate converts a yearly rate to a daily rate under the given
// day-count convention. Unknown conventions fall back to "actual", which takes
// the day count from the effective date's year.
func YearlyToDailyRate(effectiveDate time.Time, yearlyRate decimal.Decimal, daysInYear string) decimal.Decimal {
	var days decimal.Decimal
	switch daysInYear {
	case DaysInYear360, DaysInYear365, DaysInYear366:
		days = decimal.RequireFromString(daysInYear)
	default:
		if isLeapYear(effectiveDate.Year()) {
			days = decimal.NewFromInt(366)
		} else {
			days = decimal.NewFromInt(365)
		}
	}
	return RoundHalfUp(yearlyRate.Div(days), RateDecimalPlaces)
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
