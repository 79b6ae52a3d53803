// FILE: lixenwraith/cfgtree/cmd/cfgtree/root.go
package main

import (
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app holds the global flags and the logger shared by all commands.
type app struct {
	out    io.Writer
	errOut io.Writer

	verbose    bool
	noColor    bool
	formatName string
	envPrefix  string
	overrides  []string

	logger zerolog.Logger
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut, logger: zerolog.Nop()}

	root := &cobra.Command{
		Use:   "cfgtree",
		Short: "Inspect, edit, convert and validate configuration files",
		Long: `cfgtree works on JSON, JSONC, TOML, YAML and CBOR configuration files.
The format is taken from --format, the file extension, or the content.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.setup()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log debug events to stderr")
	flags.BoolVar(&a.noColor, "no-color", false, "disable colored output")
	flags.StringVarP(&a.formatName, "format", "f", "", "input format: json, jsonc, toml, yaml or cbor (default: detect)")
	flags.StringVar(&a.envPrefix, "env-prefix", "", "override loaded entries from PREFIX_SECTION_KEY environment variables")
	flags.StringArrayVarP(&a.overrides, "override", "o", nil, "override an entry as key.path=value (repeatable)")

	root.AddCommand(
		a.getCmd(),
		a.setCmd(),
		a.convertCmd(),
		a.checkCmd(),
		a.diffCmd(),
		a.findCmd(),
	)
	return root
}

func (a *app) setup() {
	level := zerolog.InfoLevel
	if a.verbose {
		level = zerolog.DebugLevel
	}
	if a.noColor {
		color.NoColor = true
	}
	a.logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        a.errOut,
		NoColor:    a.noColor || color.NoColor,
		TimeFormat: time.TimeOnly,
	}).Level(level).With().Timestamp().Logger()
}
