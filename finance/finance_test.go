package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 { return &v }

func TestAnnuity(t *testing.T) {
	fig, err := Annuity(25000, 4.5, 60)
	require.NoError(t, err)

	// Standard annuity value for 25k at 4.5% over 60 months.
	assert.InDelta(t, 466.08, fig.MonthlyRate, 466.08*0.02)
	assert.InDelta(t, fig.MonthlyRate*60, fig.TotalCost, 0.01)
	assert.InDelta(t, fig.TotalCost-25000, fig.TotalInterest, 0.01)
	assert.Greater(t, fig.TotalInterest, 0.0)
}

func TestAnnuityZeroRate(t *testing.T) {
	fig, err := Annuity(24000, 0, 48)
	require.NoError(t, err)
	assert.Equal(t, 500.0, fig.MonthlyRate)
	assert.Equal(t, 24000.0, fig.TotalCost)
	assert.Equal(t, 0.0, fig.TotalInterest)
}

func TestAnnuityRejectsBadInput(t *testing.T) {
	_, err := Annuity(25000, 4.5, 0)
	assert.ErrorIs(t, err, ErrInvalidTerm)

	_, err = Annuity(25000, 4.5, -12)
	assert.ErrorIs(t, err, ErrInvalidTerm)

	_, err = Annuity(0, 4.5, 60)
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestLeasing(t *testing.T) {
	cfg := Config{TermMonths: 60, LeasingFactorPct: 1.2, ResidualPct: 10}
	fig, err := Leasing(20000, cfg)
	require.NoError(t, err)

	assert.InDelta(t, 240.0, fig.MonthlyRate, 0.001)
	assert.InDelta(t, 240.0*60+2000, fig.TotalCost, 0.001)
}

func TestResolvePricePriority(t *testing.T) {
	all := PriceSources{
		Modified:   fptr(18500),
		Commission: fptr(19200),
		Net:        fptr(17000),
		Fallback:   15000,
	}

	p, err := ResolvePrice(all)
	require.NoError(t, err)
	assert.Equal(t, 18500.0, p)

	all.Modified = nil
	p, _ = ResolvePrice(all)
	assert.Equal(t, 19200.0, p)

	all.Commission = nil
	p, _ = ResolvePrice(all)
	assert.Equal(t, 17000.0, p)

	all.Net = nil
	p, _ = ResolvePrice(all)
	assert.Equal(t, 15000.0, p)

	all.Fallback = 0
	_, err = ResolvePrice(all)
	assert.ErrorIs(t, err, ErrNoPrice)
}

func TestResolvePriceSkipsNonPositive(t *testing.T) {
	p, err := ResolvePrice(PriceSources{
		Modified: fptr(0),
		Net:      fptr(16000),
	})
	require.NoError(t, err)
	assert.Equal(t, 16000.0, p)

	_, err = ResolvePrice(PriceSources{Modified: fptr(-5)})
	assert.ErrorIs(t, err, ErrNoPrice)
}

func TestCashflowAmortizationYear(t *testing.T) {
	cfg := Config{HorizonYears: 20, AnnualSavings: 2200, AnnualRunningCost: 200}
	rows := Cashflow(18000, cfg)
	require.Len(t, rows, 20)

	// 18000 / 2000 net per year: balance reaches zero exactly in year 9.
	assert.Equal(t, 9, AmortizationYear(rows))
	assert.True(t, rows[8].BreakEven)
	assert.InDelta(t, 0.0, rows[8].Cumulative, 0.001)
	assert.False(t, rows[9].BreakEven, "only the first non-negative year is flagged")

	assert.InDelta(t, -16000.0, rows[0].Cumulative, 0.001)
	assert.InDelta(t, 20*2000.0-18000.0, rows[19].Cumulative, 0.001)
}

func TestCashflowNeverBreakingEven(t *testing.T) {
	cfg := Config{HorizonYears: 5, AnnualSavings: 100, AnnualRunningCost: 50}
	rows := Cashflow(10000, cfg)
	assert.Equal(t, 0, AmortizationYear(rows))
}

func TestCashflowDefaultHorizon(t *testing.T) {
	rows := Cashflow(1000, Config{AnnualSavings: 100})
	assert.Len(t, rows, DefaultHorizonYears)
}

func TestCompareRanksByTotalCost(t *testing.T) {
	credit := Figures{TotalCost: 27500}
	leasing := Figures{TotalCost: 26800}

	ranked := Compare(25000, credit, leasing)
	require.Len(t, ranked, 3)
	assert.Equal(t, "Cash purchase", ranked[0].Name)
	assert.Equal(t, "Leasing", ranked[1].Name)
	assert.Equal(t, "Credit", ranked[2].Name)
}
