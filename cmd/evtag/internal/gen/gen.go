package gen

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/broady/evtag/evtaggen"
)

// Options are the generation flags shared by gen and check.
type Options struct {
	Dir         string `help:"Directory to resolve packages in." short:"C" default:"."`
	Output      string `help:"Name of the file generated in each package." short:"o" default:"events_gen.go"`
	Runtime     string `help:"Import path of the runtime package providing Sink and Holder." default:"github.com/broady/evtag"`
	RuntimeName string `help:"Package name of the runtime package, if it differs from its path." name:"runtime-name"`
	Strict      bool   `help:"Fail when two variants share an event name."`
}

// Generator returns a generator for patterns configured from o.
func (o *Options) Generator(patterns []string, logger *slog.Logger) *evtaggen.Generator {
	g := evtaggen.FromDir(o.Dir).
		Patterns(patterns...).
		Output(o.Output).
		Runtime(o.Runtime).
		RuntimeName(o.RuntimeName).
		WithLogger(logger)
	if o.Strict {
		g = g.Strict()
	}
	return g
}

type Cmd struct {
	Options
	Packages []string `arg:"" optional:"" help:"Packages to process (default: .)."`
}

func (c *Cmd) Run(ctx context.Context, logger *slog.Logger) error {
	res, err := c.Generator(c.Packages, logger).ToDir(ctx)
	if err != nil {
		return err
	}
	for _, f := range res.Files {
		fmt.Fprintln(os.Stdout, f.Path)
	}
	return nil
}
