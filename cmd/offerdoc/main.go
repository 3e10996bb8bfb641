// Command offerdoc generates an extended solar offer document from a YAML
// job file: a fixed base template plus financing chapter, analysis charts,
// and appended datasheets and company documents.
//
// # Usage
//
//	offerdoc generate --job offer.yaml
//
// # Job file
//
//	base: template.pdf
//	output: offer.pdf
//	financing:
//	  net_price: 18500
//	  annual_rate_pct: 4.5
//	  term_months: 120
//	  leasing_factor_pct: 1.1
//	  residual_pct: 10
//	  annual_savings: 2400
//	  annual_running_cost: 300
//	charts:
//	  layout: 2
//	  keys: [production_monthly, consumption_monthly]
//	data:
//	  production_monthly: [310, 340, 420, 480, 520, 560, 550, 510, 450, 390, 330, 300]
//	datasheets:
//	  paths: {inverter: /srv/assets/inverter.pdf}
//	  ids: [inverter]
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/helioprint/offerdoc"
	"github.com/helioprint/offerdoc/attach"
	"github.com/helioprint/offerdoc/charts"
	"github.com/helioprint/offerdoc/finance"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "offerdoc:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "offerdoc",
		Short:         "Solar offer document generator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newGenerateCmd())
	return root
}

func newGenerateCmd() *cobra.Command {
	var (
		jobPath string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Assemble an offer document from a job file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(jobPath, verbose)
		},
	}
	cmd.Flags().StringVar(&jobPath, "job", "", "path to the YAML job file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log debug output")
	_ = cmd.MarkFlagRequired("job")
	return cmd
}

func runGenerate(jobPath string, verbose bool) error {
	job, err := loadJob(jobPath)
	if err != nil {
		return err
	}

	base, err := os.ReadFile(job.Base)
	if err != nil {
		return fmt.Errorf("reading base document: %w", err)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if !verbose {
		logger = logger.Level(zerolog.InfoLevel)
	}

	opts, err := job.options(logger)
	if err != nil {
		return err
	}

	doc, summary, err := offerdoc.Generate(base, job.analysisData(), opts...)
	if err != nil {
		return err
	}

	if err := os.WriteFile(job.Output, doc.Bytes, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", job.Output, err)
	}

	logger.Info().
		Str("output", job.Output).
		Int("pages", doc.PageCount).
		Int("warnings", len(summary.Warnings)).
		Msg("offer generated")
	if len(summary.Warnings)+len(summary.Errors) > 0 {
		fmt.Fprint(os.Stderr, summary.String())
	}
	return nil
}

type jobFile struct {
	Base        string               `yaml:"base"`
	Output      string               `yaml:"output"`
	Financing   *jobFinancing        `yaml:"financing"`
	Charts      *jobCharts           `yaml:"charts"`
	Data        map[string][]float64 `yaml:"data"`
	Datasheets  *jobAttachments      `yaml:"datasheets"`
	Documents   *jobAttachments      `yaml:"documents"`
	Watermark   string               `yaml:"watermark"`
	PageNumbers string               `yaml:"page_numbers"`
}

type jobFinancing struct {
	ModifiedPrice     *float64 `yaml:"modified_price"`
	CommissionPrice   *float64 `yaml:"commission_price"`
	NetPrice          *float64 `yaml:"net_price"`
	FallbackPrice     float64  `yaml:"fallback_price"`
	AnnualRatePct     float64  `yaml:"annual_rate_pct"`
	TermMonths        int      `yaml:"term_months"`
	LeasingFactorPct  float64  `yaml:"leasing_factor_pct"`
	ResidualPct       float64  `yaml:"residual_pct"`
	HorizonYears      int      `yaml:"horizon_years"`
	AnnualSavings     float64  `yaml:"annual_savings"`
	AnnualRunningCost float64  `yaml:"annual_running_cost"`
}

type jobCharts struct {
	Layout int      `yaml:"layout"`
	Keys   []string `yaml:"keys"`
}

type jobAttachments struct {
	Paths map[string]string `yaml:"paths"`
	IDs   []string          `yaml:"ids"`
}

func loadJob(path string) (*jobFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading job file: %w", err)
	}
	var job jobFile
	if err := yaml.Unmarshal(raw, &job); err != nil {
		return nil, fmt.Errorf("parsing job file: %w", err)
	}
	if job.Base == "" {
		return nil, fmt.Errorf("job file: base is required")
	}
	if job.Output == "" {
		return nil, fmt.Errorf("job file: output is required")
	}
	return &job, nil
}

func (j *jobFile) analysisData() charts.AnalysisData {
	data := make(charts.AnalysisData, len(j.Data))
	for k, v := range j.Data {
		data[k] = v
	}
	return data
}

func (j *jobFile) options(logger zerolog.Logger) ([]offerdoc.Option, error) {
	opts := []offerdoc.Option{offerdoc.WithLogger(logger)}

	if f := j.Financing; f != nil {
		opts = append(opts, offerdoc.WithFinancing(
			finance.PriceSources{
				Modified:   f.ModifiedPrice,
				Commission: f.CommissionPrice,
				Net:        f.NetPrice,
				Fallback:   f.FallbackPrice,
			},
			finance.Config{
				AnnualRatePct:     f.AnnualRatePct,
				TermMonths:        f.TermMonths,
				LeasingFactorPct:  f.LeasingFactorPct,
				ResidualPct:       f.ResidualPct,
				HorizonYears:      f.HorizonYears,
				AnnualSavings:     f.AnnualSavings,
				AnnualRunningCost: f.AnnualRunningCost,
			},
		))
	}

	if c := j.Charts; c != nil && len(c.Keys) > 0 {
		keys := make([]charts.Key, 0, len(c.Keys))
		for _, k := range c.Keys {
			if _, ok := charts.Lookup(charts.Key(k)); !ok {
				return nil, fmt.Errorf("job file: unknown chart key %q", k)
			}
			keys = append(keys, charts.Key(k))
		}
		opts = append(opts, offerdoc.WithChartKeys(keys...))
		if c.Layout != 0 {
			opts = append(opts, offerdoc.WithChartLayout(offerdoc.ChartLayout(c.Layout)))
		}
	}

	if d := j.Datasheets; d != nil && len(d.IDs) > 0 {
		opts = append(opts, offerdoc.WithDatasheets(attach.PathResolver(d.Paths), d.IDs...))
	}
	if d := j.Documents; d != nil && len(d.IDs) > 0 {
		opts = append(opts, offerdoc.WithCompanyDocuments(attach.PathResolver(d.Paths), d.IDs...))
	}
	if j.Watermark != "" {
		opts = append(opts, offerdoc.WithDraftWatermark(offerdoc.Watermark{Text: j.Watermark}))
	}
	if j.PageNumbers != "" {
		opts = append(opts, offerdoc.WithPageNumbers(j.PageNumbers))
	}
	return opts, nil
}
