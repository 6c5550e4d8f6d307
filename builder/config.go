package builder

import "errors"

// ErrTooFewStates is returned when a topology needs more states than requested.
var ErrTooFewStates = errors.New("builder: too few states requested")

// PdfFn maps an arc's ordinal (source state index) to the pdf-id it consumes.
// The default is the identity: state i's outgoing arc consumes pdf-id i.
type PdfFn func(fromState int) int

// config holds the resolved options for a constructor.
type config struct {
	pdfFn PdfFn
}

// Option customizes a constructor.
type Option func(*config)

// WithPdfFn overrides the default pdf-id assignment.
func WithPdfFn(fn PdfFn) Option {
	return func(c *config) {
		if fn != nil {
			c.pdfFn = fn
		}
	}
}

func newConfig(opts ...Option) config {
	c := config{pdfFn: func(fromState int) int { return fromState }}
	for _, opt := range opts {
		opt(&c)
	}

	return c
}
