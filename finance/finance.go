// Package finance computes the figures behind the financing section of an
// offer: price resolution, credit annuities, leasing rates, the year-by-year
// cashflow schedule, and the closing scenario comparison.
//
// All functions are pure; figures are derived per request and never stored.
package finance

import (
	"errors"
	"math"
)

// Sentinel errors for financing precondition violations.
var (
	ErrNoPrice      = errors.New("finance: no positive price resolves")
	ErrInvalidTerm  = errors.New("finance: term must be at least one month")
	ErrInvalidPrice = errors.New("finance: principal must be positive")
)

// Config holds the financing parameters supplied with an offer.
type Config struct {
	AnnualRatePct     float64 // nominal credit interest in percent per year
	TermMonths        int
	LeasingFactorPct  float64 // monthly leasing rate in percent of principal
	ResidualPct       float64 // residual value at end of term, percent of principal
	HorizonYears      int     // cashflow horizon; 0 means DefaultHorizonYears
	AnnualSavings     float64 // yearly savings produced by the installation
	AnnualRunningCost float64 // yearly operating cost
}

// DefaultHorizonYears is the cashflow horizon used when none is configured.
const DefaultHorizonYears = 20

// PriceSources is the precedence chain for the final offer price. Highest
// priority first: the explicit post-discount price most recently set by the
// user, then the price including commission, then the base net price, then
// an optional fixed fallback. The first non-nil positive value wins.
type PriceSources struct {
	Modified   *float64
	Commission *float64
	Net        *float64
	Fallback   float64 // 0 means no fallback configured
}

// ResolvePrice walks the priority chain and returns the first positive
// price. The chain order is a domain rule and must not be reordered.
func ResolvePrice(s PriceSources) (float64, error) {
	for _, p := range []*float64{s.Modified, s.Commission, s.Net} {
		if p != nil && *p > 0 {
			return *p, nil
		}
	}
	if s.Fallback > 0 {
		return s.Fallback, nil
	}
	return 0, ErrNoPrice
}

// Figures are the derived numbers for one financing scenario.
type Figures struct {
	MonthlyRate   float64
	TotalCost     float64
	TotalInterest float64
}

// Annuity computes the monthly credit payment for the given principal,
// nominal annual rate, and term. A zero rate degenerates to straight
// division; a non-positive term is rejected before the formula.
func Annuity(principal, annualRatePct float64, termMonths int) (Figures, error) {
	if termMonths <= 0 {
		return Figures{}, ErrInvalidTerm
	}
	if principal <= 0 {
		return Figures{}, ErrInvalidPrice
	}

	n := float64(termMonths)
	r := annualRatePct / 100 / 12

	var rate float64
	if r == 0 {
		rate = principal / n
	} else {
		pow := math.Pow(1+r, n)
		rate = principal * (r * pow) / (pow - 1)
	}

	total := rate * n
	return Figures{
		MonthlyRate:   rate,
		TotalCost:     total,
		TotalInterest: total - principal,
	}, nil
}

// Leasing computes the monthly leasing rate from the configured factor,
// with the residual value due at the end of the term.
func Leasing(principal float64, cfg Config) (Figures, error) {
	if cfg.TermMonths <= 0 {
		return Figures{}, ErrInvalidTerm
	}
	if principal <= 0 {
		return Figures{}, ErrInvalidPrice
	}

	rate := principal * cfg.LeasingFactorPct / 100
	residual := principal * cfg.ResidualPct / 100
	total := rate*float64(cfg.TermMonths) + residual

	return Figures{
		MonthlyRate:   rate,
		TotalCost:     total,
		TotalInterest: total - principal,
	}, nil
}

// Scenario names one purchase option in the closing comparison.
type Scenario struct {
	Name      string
	TotalCost float64
}

// Compare ranks cash purchase, credit, and leasing by total effective cost,
// cheapest first. The first entry is the recommendation.
func Compare(principal float64, credit, leasing Figures) []Scenario {
	out := []Scenario{
		{Name: "Cash purchase", TotalCost: principal},
		{Name: "Credit", TotalCost: credit.TotalCost},
		{Name: "Leasing", TotalCost: leasing.TotalCost},
	}
	// Stable insertion keeps the documented order on ties.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].TotalCost < out[j-1].TotalCost; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
