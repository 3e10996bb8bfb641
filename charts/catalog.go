// Package charts renders the analysis charts that can be appended to an
// offer document. Chart keys form a closed catalog; rendering is memoized
// by key and input-data fingerprint so a chart appearing in several layouts
// is drawn only once per run.
package charts

// Key identifies a chart in the catalog.
type Key string

// The chart catalog. Keys outside this set are rejected with ErrUnknownChart.
const (
	// Production
	ProductionMonthly        Key = "production_monthly"
	ProductionDailyProfile   Key = "production_daily_profile"
	ProductionAnnualForecast Key = "production_annual_forecast"
	SpecificYield            Key = "specific_yield"
	PeakPowerDistribution    Key = "peak_power_distribution"

	// Consumption
	ConsumptionMonthly      Key = "consumption_monthly"
	ConsumptionDailyProfile Key = "consumption_daily_profile"
	ConsumptionAnnual       Key = "consumption_annual"
	LoadProfileWeekday      Key = "load_profile_weekday"
	LoadProfileWeekend      Key = "load_profile_weekend"

	// Energy balance
	SelfConsumptionMonthly Key = "self_consumption_monthly"
	SelfConsumptionShare   Key = "self_consumption_share"
	AutarkyMonthly         Key = "autarky_monthly"
	AutarkyShare           Key = "autarky_share"
	FeedInMonthly          Key = "feed_in_monthly"
	GridPurchaseMonthly    Key = "grid_purchase_monthly"
	EnergyBalanceMonthly   Key = "energy_balance_monthly"
	CoverageMonthly        Key = "coverage_monthly"

	// Battery
	BatteryChargeMonthly    Key = "battery_charge_monthly"
	BatteryDischargeMonthly Key = "battery_discharge_monthly"
	BatterySOCProfile       Key = "battery_soc_profile"
	BatteryCyclesAnnual     Key = "battery_cycles_annual"
	BatteryAutarkyGain      Key = "battery_autarky_gain"

	// Financial
	CashflowCumulative        Key = "cashflow_cumulative"
	CashflowAnnual            Key = "cashflow_annual"
	AmortizationCurve         Key = "amortization_curve"
	ElectricityCostProjection Key = "electricity_cost_projection"
	ElectricityCostSavings    Key = "electricity_cost_savings"
	FeedInRevenueMonthly      Key = "feed_in_revenue_monthly"
	TotalCostComparison       Key = "total_cost_comparison"
	FinancingRatesComparison  Key = "financing_rates_comparison"
	TariffDevelopment         Key = "tariff_development"
	PaybackSensitivity        Key = "payback_sensitivity"

	// Environment
	CO2SavingsAnnual     Key = "co2_savings_annual"
	CO2SavingsCumulative Key = "co2_savings_cumulative"
	TreeEquivalent       Key = "tree_equivalent"

	// Site
	IrradiationMonthly        Key = "irradiation_monthly"
	IrradiationHorizon        Key = "irradiation_horizon"
	ModuleTemperatureMonthly  Key = "module_temperature_monthly"
	PerformanceRatioMonthly   Key = "performance_ratio_monthly"
	ShadingLosses             Key = "shading_losses"
	OrientationGain           Key = "orientation_gain"

	// Pricing
	PriceBreakdown     Key = "price_breakdown"
	CostStructure      Key = "cost_structure"
	ScenarioComparison Key = "scenario_comparison"
)

// Kind is the drawing style of a chart.
type Kind int

const (
	Bar Kind = iota
	Line
	Area
	Pie
)

// Spec describes one catalog entry: what to draw and from which series of
// the analysis data.
type Spec struct {
	Key     Key
	Title   string
	Kind    Kind
	DataKey string // required series in AnalysisData
	Unit    string
}

var catalog = map[Key]Spec{
	ProductionMonthly:        {Title: "Monthly energy production", Kind: Bar, Unit: "kWh"},
	ProductionDailyProfile:   {Title: "Average daily production profile", Kind: Area, Unit: "kW"},
	ProductionAnnualForecast: {Title: "Annual production forecast", Kind: Line, Unit: "kWh"},
	SpecificYield:            {Title: "Specific yield", Kind: Bar, Unit: "kWh/kWp"},
	PeakPowerDistribution:    {Title: "Peak power distribution", Kind: Bar, Unit: "kW"},

	ConsumptionMonthly:      {Title: "Monthly consumption", Kind: Bar, Unit: "kWh"},
	ConsumptionDailyProfile: {Title: "Average daily consumption profile", Kind: Area, Unit: "kW"},
	ConsumptionAnnual:       {Title: "Annual consumption", Kind: Line, Unit: "kWh"},
	LoadProfileWeekday:      {Title: "Weekday load profile", Kind: Area, Unit: "kW"},
	LoadProfileWeekend:      {Title: "Weekend load profile", Kind: Area, Unit: "kW"},

	SelfConsumptionMonthly: {Title: "Monthly self-consumption", Kind: Bar, Unit: "kWh"},
	SelfConsumptionShare:   {Title: "Self-consumption share", Kind: Pie, Unit: "%"},
	AutarkyMonthly:         {Title: "Monthly autarky", Kind: Bar, Unit: "%"},
	AutarkyShare:           {Title: "Degree of autarky", Kind: Pie, Unit: "%"},
	FeedInMonthly:          {Title: "Monthly grid feed-in", Kind: Bar, Unit: "kWh"},
	GridPurchaseMonthly:    {Title: "Monthly grid purchase", Kind: Bar, Unit: "kWh"},
	EnergyBalanceMonthly:   {Title: "Monthly energy balance", Kind: Bar, Unit: "kWh"},
	CoverageMonthly:        {Title: "Monthly consumption coverage", Kind: Bar, Unit: "%"},

	BatteryChargeMonthly:    {Title: "Monthly battery charge", Kind: Bar, Unit: "kWh"},
	BatteryDischargeMonthly: {Title: "Monthly battery discharge", Kind: Bar, Unit: "kWh"},
	BatterySOCProfile:       {Title: "Battery state of charge profile", Kind: Area, Unit: "%"},
	BatteryCyclesAnnual:     {Title: "Annual battery cycles", Kind: Line, Unit: ""},
	BatteryAutarkyGain:      {Title: "Autarky gain from storage", Kind: Bar, Unit: "%"},

	CashflowCumulative:        {Title: "Cumulative cashflow", Kind: Line, Unit: "EUR"},
	CashflowAnnual:            {Title: "Annual cashflow", Kind: Bar, Unit: "EUR"},
	AmortizationCurve:         {Title: "Amortization curve", Kind: Line, Unit: "EUR"},
	ElectricityCostProjection: {Title: "Electricity cost projection", Kind: Line, Unit: "EUR"},
	ElectricityCostSavings:    {Title: "Electricity cost savings", Kind: Bar, Unit: "EUR"},
	FeedInRevenueMonthly:      {Title: "Monthly feed-in revenue", Kind: Bar, Unit: "EUR"},
	TotalCostComparison:       {Title: "Total cost comparison", Kind: Bar, Unit: "EUR"},
	FinancingRatesComparison:  {Title: "Financing rates comparison", Kind: Bar, Unit: "EUR"},
	TariffDevelopment:         {Title: "Tariff development", Kind: Line, Unit: "ct/kWh"},
	PaybackSensitivity:        {Title: "Payback sensitivity", Kind: Line, Unit: "a"},

	CO2SavingsAnnual:     {Title: "Annual CO2 savings", Kind: Bar, Unit: "kg"},
	CO2SavingsCumulative: {Title: "Cumulative CO2 savings", Kind: Area, Unit: "kg"},
	TreeEquivalent:       {Title: "Tree equivalent", Kind: Bar, Unit: ""},

	IrradiationMonthly:       {Title: "Monthly irradiation", Kind: Bar, Unit: "kWh/m2"},
	IrradiationHorizon:       {Title: "Horizon irradiation", Kind: Area, Unit: "kWh/m2"},
	ModuleTemperatureMonthly: {Title: "Monthly module temperature", Kind: Line, Unit: "C"},
	PerformanceRatioMonthly:  {Title: "Monthly performance ratio", Kind: Line, Unit: "%"},
	ShadingLosses:            {Title: "Shading losses", Kind: Bar, Unit: "%"},
	OrientationGain:          {Title: "Orientation gain", Kind: Bar, Unit: "%"},

	PriceBreakdown:     {Title: "Price breakdown", Kind: Pie, Unit: "EUR"},
	CostStructure:      {Title: "Cost structure", Kind: Pie, Unit: "EUR"},
	ScenarioComparison: {Title: "Scenario comparison", Kind: Bar, Unit: "EUR"},
}

func init() {
	// Self-key the catalog: the data series defaults to the chart key.
	for k, s := range catalog {
		s.Key = k
		if s.DataKey == "" {
			s.DataKey = string(k)
		}
		catalog[k] = s
	}
}

// Lookup returns the catalog entry for a key. The second return value is
// false for keys outside the catalog.
func Lookup(k Key) (Spec, bool) {
	s, ok := catalog[k]
	return s, ok
}

// CatalogSize returns the number of known chart keys.
func CatalogSize() int { return len(catalog) }
