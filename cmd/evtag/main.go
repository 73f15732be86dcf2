package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"

	"github.com/broady/evtag/cmd/evtag/internal/check"
	"github.com/broady/evtag/cmd/evtag/internal/gen"
)

type CLI struct {
	Verbose bool `help:"Log progress to stderr." short:"v"`

	Version VersionCmd `cmd:"" help:"Print version information."`
	Gen     gen.Cmd    `cmd:"" help:"Generate event naming, publish and downcast functions for tagged unions."`
	Check   check.Cmd  `cmd:"" help:"List tagged unions and fail if generated files are out of date."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(Version())
	return nil
}

// newLogger logs warnings to stderr, and everything with verbose.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func newParser(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("evtag"),
		kong.Description("Generate event naming, publishing and downcasting code for Go tagged unions."),
		kong.UsageOnError(),
		kong.Configuration(kong.JSON, ".evtag.json", "~/.config/evtag.json"),
	}, options...)
	return kong.New(cli, options...)
}

func main() {
	cli := &CLI{}
	parser, err := newParser(cli)
	if err != nil {
		panic(err)
	}
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	kctx.BindTo(ctx, (*context.Context)(nil))

	err = kctx.Run(newLogger(cli.Verbose))
	kctx.FatalIfErrorf(err)
}
