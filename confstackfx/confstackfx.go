// Package confstackfx wires confstack into an fx dependency-injection
// container, following the fx.Annotate/ResultTags pattern the teacher
// codebase's own config module uses. Providers register into the
// "confstack.providers" group via AsProvider, in the order fx resolves
// them; Module assembles that group into a single precedence-resolving
// MultiProvider and exposes a *reader.Reader over it.
package confstackfx

import (
	"fmt"

	"go.uber.org/fx"

	"github.com/mapoio/confstack"
	"github.com/mapoio/confstack/provider/multiprovider"
	"github.com/mapoio/confstack/reader"
)

// Module provides confstack.Provider (the assembled MultiProvider) and
// *reader.Reader to the container.
var Module = fx.Module("confstack",
	fx.Provide(
		fx.Annotate(
			newMultiProvider,
			fx.ParamTags(`group:"confstack.providers"`),
		),
	),
	fx.Provide(newReader),
)

// AsProvider wraps constructor (which must return a confstack.Provider, or
// (confstack.Provider, error)) so its result feeds the "confstack.providers"
// group that Module's MultiProvider is built from.
func AsProvider(constructor any) fx.Option {
	return fx.Provide(
		fx.Annotate(
			constructor,
			fx.As(new(confstack.Provider)),
			fx.ResultTags(`group:"confstack.providers"`),
		),
	)
}

// WithReaderOption feeds a reader.Option into Module's *reader.Reader
// construction, via the "confstack.reader_options" group.
func WithReaderOption(constructor any) fx.Option {
	return fx.Provide(
		fx.Annotate(
			constructor,
			fx.ResultTags(`group:"confstack.reader_options"`),
		),
	)
}

func newMultiProvider(providers []confstack.Provider) (confstack.Provider, error) {
	if len(providers) == 0 {
		return nil, errNoProviders
	}
	return multiprovider.New("confstack", providers...), nil
}

var errNoProviders = fmt.Errorf("confstackfx: no providers registered in the %q group; use confstackfx.AsProvider", "confstack.providers")

type readerParams struct {
	fx.In

	Provider confstack.Provider
	Reporter confstack.AccessReporter `optional:"true"`
	Options  []reader.Option          `group:"confstack.reader_options"`
}

func newReader(p readerParams) *reader.Reader {
	opts := make([]reader.Option, 0, len(p.Options)+1)
	opts = append(opts, p.Options...)
	if p.Reporter != nil {
		opts = append(opts, reader.WithAccessReporter(p.Reporter))
	}
	return reader.New(p.Provider, opts...)
}
