package check

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/broady/evtag/cmd/evtag/internal/gen"
	"github.com/broady/evtag/evtaggen"
)

type Cmd struct {
	gen.Options
	Packages []string `arg:"" optional:"" help:"Packages to check (default: .)."`
}

func (c *Cmd) Run(ctx context.Context, logger *slog.Logger) error {
	res, stale, err := c.Generator(c.Packages, logger).Check(ctx)
	if err != nil {
		return err
	}
	Report(os.Stdout, res)
	if len(stale) > 0 {
		return fmt.Errorf("generated files are out of date, run evtag gen: %s", strings.Join(stale, ", "))
	}
	return nil
}

// Report prints every union with the event name of each variant.
func Report(w io.Writer, res *evtaggen.GenerateResult) {
	for _, u := range res.Unions {
		fmt.Fprintf(w, "✓ %s: %s (%d variants)\n", u.Source, u.Name, len(u.Arms))
		for _, a := range u.Arms {
			name := a.Variant.Name
			if a.Variant.Pointer {
				name = "*" + name
			}
			fmt.Fprintf(w, "    %-20s %s\n", name, a.Identifier)
		}
	}
	for _, warning := range res.Warnings {
		fmt.Fprintf(w, "! %s\n", warning)
	}
}
