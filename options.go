package offerdoc

import (
	"github.com/rs/zerolog"

	"github.com/helioprint/offerdoc/attach"
	"github.com/helioprint/offerdoc/charts"
	"github.com/helioprint/offerdoc/finance"
)

// ChartLayout is the number of charts placed on each generated chart page.
type ChartLayout int

const (
	OnePerPage  ChartLayout = 1
	TwoPerPage  ChartLayout = 2
	FourPerPage ChartLayout = 4
)

// Option is a functional option for configuring a generation run via
// Generate. Options are applied to a private copy, so a shared option
// slice can safely configure concurrent runs.
type Option func(*runConfig)

type runConfig struct {
	financing     *financingConfig
	chartKeys     []charts.Key
	chartLayout   ChartLayout
	datasheets    []string
	documents     []string
	datasheetSrc  attach.Resolver
	documentSrc   attach.Resolver
	watermark     *Watermark
	pageNumberFmt string
	logger        zerolog.Logger
}

type financingConfig struct {
	sources finance.PriceSources
	config  finance.Config
}

// WithFinancing enables the financing chapter, computed from the given
// price chain and parameters.
func WithFinancing(sources finance.PriceSources, cfg finance.Config) Option {
	return func(c *runConfig) {
		c.financing = &financingConfig{sources: sources, config: cfg}
	}
}

// WithChartKeys selects the catalog charts to render, in order. Keys with
// no matching data series are omitted with a warning at generation time.
func WithChartKeys(keys ...charts.Key) Option {
	return func(c *runConfig) {
		c.chartKeys = append([]charts.Key(nil), keys...)
	}
}

// WithChartLayout sets the chart page density. The default is TwoPerPage.
func WithChartLayout(l ChartLayout) Option {
	return func(c *runConfig) {
		switch l {
		case OnePerPage, TwoPerPage, FourPerPage:
			c.chartLayout = l
		}
	}
}

// WithDatasheets selects the component datasheets to append, resolved
// through the given source. Unresolvable ids are skipped with a warning.
func WithDatasheets(src attach.Resolver, ids ...string) Option {
	return func(c *runConfig) {
		c.datasheetSrc = src
		c.datasheets = append([]string(nil), ids...)
	}
}

// WithCompanyDocuments selects company documents (terms, certificates) to
// append after the datasheets.
func WithCompanyDocuments(src attach.Resolver, ids ...string) Option {
	return func(c *runConfig) {
		c.documentSrc = src
		c.documents = append([]string(nil), ids...)
	}
}

// WithDraftWatermark stamps the given watermark across every page of the
// finished document. Zero fields take the draft defaults.
func WithDraftWatermark(wm Watermark) Option {
	return func(c *runConfig) {
		c.watermark = &wm
	}
}

// WithPageNumbers prints centered page numbers in the bottom margin of
// every page. The format receives the page number and the total, e.g.
// "Page %d of %d".
func WithPageNumbers(format string) Option {
	return func(c *runConfig) {
		c.pageNumberFmt = format
	}
}

// WithLogger mirrors the structured run log to the given zerolog logger.
// Without it the run log is still collected but nothing is emitted.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *runConfig) {
		c.logger = logger
	}
}

func newRunConfig(opts ...Option) *runConfig {
	cfg := &runConfig{
		chartLayout: TwoPerPage,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
