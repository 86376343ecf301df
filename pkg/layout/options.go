package layout

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stamboom/pkg/layout/ordering"
)

// Defaults used when no option overrides them.
const (
	DefaultNodeSpacing      = 40.0
	DefaultRankSpacing      = 80.0
	DefaultComponentSpacing = 160.0
	DefaultLooseColumns     = 4
)

type config struct {
	nodeSpacing      float64
	rankSpacing      float64
	componentSpacing float64
	looseColumns     int
	orderer          ordering.Orderer
	logger           *log.Logger
}

func defaults() config {
	return config{
		nodeSpacing:      DefaultNodeSpacing,
		rankSpacing:      DefaultRankSpacing,
		componentSpacing: DefaultComponentSpacing,
		looseColumns:     DefaultLooseColumns,
		orderer:          ordering.ForQuality(ordering.QualityBalanced),
		logger:           log.New(io.Discard),
	}
}

// Option configures [Compute].
type Option func(*config)

// WithNodeSpacing sets the horizontal gap between boxes in a rank.
func WithNodeSpacing(px float64) Option {
	return func(c *config) {
		if px > 0 {
			c.nodeSpacing = px
		}
	}
}

// WithRankSpacing sets the vertical gap between ranks.
func WithRankSpacing(px float64) Option {
	return func(c *config) {
		if px > 0 {
			c.rankSpacing = px
		}
	}
}

// WithComponentSpacing sets the gap between disjoint components and before
// the loose node grid.
func WithComponentSpacing(px float64) Option {
	return func(c *config) {
		if px > 0 {
			c.componentSpacing = px
		}
	}
}

// WithLooseColumns sets how many columns the loose node grid has.
func WithLooseColumns(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.looseColumns = n
		}
	}
}

// WithOrderer replaces the crossing reduction strategy.
func WithOrderer(o ordering.Orderer) Option {
	return func(c *config) {
		if o != nil {
			c.orderer = o
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
