// FILE: lixenwraith/cfgtree/cmd/cfgtree/commands.go
package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/lixenwraith/cfgtree"
	"github.com/lixenwraith/cfgtree/format"
	"github.com/lixenwraith/cfgtree/format/cbor"
)

var (
	errNonConforming = errors.New("configuration does not conform to its rules")
	errDifferent     = errors.New("configurations differ")
)

func (a *app) getCmd() *cobra.Command {
	var withComment bool
	cmd := &cobra.Command{
		Use:   "get <file> [path]",
		Short: "Print a document or the value at a dotted path",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cd, err := a.load(args[0], true)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				return a.save(c, codec{text: cd.textOrJSON()}, "-")
			}

			p := cfgtree.P(args[1])
			v, ok := c.Get(p)
			if !ok {
				return fmt.Errorf("%w: %s", cfgtree.ErrNoEntry, args[1])
			}
			if withComment {
				if comment, ok := c.GetComment(p); ok {
					for _, line := range strings.Split(comment, "\n") {
						fmt.Fprintln(a.out, color.HiBlackString("# "+line))
					}
				}
			}
			switch v.Kind() {
			case cfgtree.KindConfig:
				sub, _ := v.AsConfig()
				return a.save(sub, codec{text: cd.textOrJSON()}, "-")
			case cfgtree.KindString:
				s, _ := v.AsString()
				fmt.Fprintln(a.out, s)
			default:
				fmt.Fprintln(a.out, v.String())
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&withComment, "comment", "c", false, "print the entry comment above the value")
	return cmd
}

func (a *app) setCmd() *cobra.Command {
	var (
		comment  string
		asString bool
	)
	cmd := &cobra.Command{
		Use:   "set <file> <path> <value>",
		Short: "Set the value at a dotted path and save the file",
		Long: `Set stores a value, creating missing tables. The value is read as a bool,
integer or float when it looks like one, and as a string otherwise.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cd, err := a.load(args[0], false)
			if err != nil {
				return err
			}

			p := cfgtree.P(args[1])
			v := cfgtree.ParseValue(args[2])
			if asString {
				v = cfgtree.String(args[2])
			}
			prev, err := c.Set(p, v)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("comment") {
				if _, err := c.SetComment(p, comment); err != nil {
					return err
				}
			}
			if err := a.save(c, cd, args[0]); err != nil {
				return err
			}
			a.logger.Info().
				Str("path", p.String()).
				Str("previous", prev.String()).
				Str("value", v.String()).
				Msg("entry updated")
			return nil
		},
	}
	cmd.Flags().StringVar(&comment, "comment", "", "attach a comment to the entry")
	cmd.Flags().BoolVarP(&asString, "string", "s", false, "store the value as a string")
	return cmd
}

func (a *app) convertCmd() *cobra.Command {
	var (
		to   string
		diag bool
	)
	cmd := &cobra.Command{
		Use:   "convert <input> [output]",
		Short: "Convert a document to another format",
		Long: `Convert writes the input in the format named by --to, or the format of the
output extension. Without an output the result goes to standard output.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := a.load(args[0], true)
			if err != nil {
				return err
			}
			output := "-"
			if len(args) == 2 {
				output = args[1]
			}

			target := to
			if target == "" {
				if output == "-" {
					return errors.New("--to is required when writing to standard output")
				}
				target = output
			}
			var cd codec
			switch {
			case isCBOR(target):
			case to != "":
				f, err := format.ByName(to)
				if err != nil {
					return err
				}
				cd.text = f
			default:
				f, err := format.ByExtension(output)
				if err != nil {
					return err
				}
				cd.text = f
			}

			if diag {
				if cd.text != nil {
					return errors.New("--diag applies to CBOR output only")
				}
				data, err := cbor.Marshal(c)
				if err != nil {
					return err
				}
				notation, err := cbor.Diagnose(data)
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, notation)
				return nil
			}

			if err := a.save(c, cd, output); err != nil {
				return err
			}
			if output != "-" {
				a.logger.Info().Str("from", args[0]).Str("to", output).Str("format", cd.name()).Msg("converted")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&to, "to", "t", "", "output format: json, jsonc, toml, yaml or cbor")
	cmd.Flags().BoolVar(&diag, "diag", false, "print CBOR output in diagnostic notation")
	return cmd
}

func (a *app) checkCmd() *cobra.Command {
	var (
		rulesPath string
		strict    bool
		fix       bool
	)
	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Validate a document against a rules file",
		Long: `Check validates entries against rules. Every table of the rules file with a
'default' key is a rule for its path, optionally bounded by 'min' and 'max',
restricted by 'in', or tested by a boolean 'expr' over 'value' and 'kind'.
With --fix the corrected document is saved.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cd, err := a.load(args[0], !fix)
			if err != nil {
				return err
			}
			rules, _, err := a.loadAs(rulesPath, "", false)
			if err != nil {
				return fmt.Errorf("failed to load rules: %w", err)
			}
			spec, err := cfgtree.SpecFromConfig(rules, strict)
			if err != nil {
				return err
			}

			logCorrection := cfgtree.LogCorrections(a.logger.With().Str("file", args[0]).Logger())
			n := spec.CorrectWithListener(c, func(action cfgtree.CorrectionAction, p cfgtree.Path, incorrect, corrected cfgtree.Value) {
				a.printCorrection(action, p, incorrect, corrected)
				if a.verbose {
					logCorrection(action, p, incorrect, corrected)
				}
			})

			if n == 0 {
				fmt.Fprintf(a.out, "%s %s conforms\n", color.GreenString("ok:"), args[0])
				return nil
			}
			if !fix {
				return fmt.Errorf("%w: %d correction(s) needed", errNonConforming, n)
			}
			if err := a.save(c, cd, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s %s: %d correction(s) applied\n", color.GreenString("fixed:"), args[0], n)
			return nil
		},
	}
	cmd.Flags().StringVarP(&rulesPath, "rules", "r", "", "rules file")
	cmd.Flags().BoolVar(&strict, "strict", false, "remove entries no rule declares")
	cmd.Flags().BoolVar(&fix, "fix", false, "save the corrected document")
	cmd.MarkFlagRequired("rules")
	return cmd
}

func (a *app) printCorrection(action cfgtree.CorrectionAction, p cfgtree.Path, incorrect, corrected cfgtree.Value) {
	switch action {
	case cfgtree.CorrectionAdd:
		fmt.Fprintf(a.out, "%s %s = %s\n", color.GreenString("+"), p, corrected)
	case cfgtree.CorrectionReplace:
		fmt.Fprintf(a.out, "%s %s: %s -> %s\n", color.YellowString("~"), p, incorrect, corrected)
	case cfgtree.CorrectionRemove:
		fmt.Fprintf(a.out, "%s %s (was %s)\n", color.RedString("-"), p, incorrect)
	}
}

func (a *app) diffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <a> <b>",
		Short: "Show differences between two documents",
		Long: `Diff compares values, ignoring comments and formats, and prints a line diff
of both documents rendered in the format of the first.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			left, cd, err := a.load(args[0], false)
			if err != nil {
				return err
			}
			right, _, err := a.load(args[1], false)
			if err != nil {
				return err
			}
			if cfgtree.Equal(left, right) {
				fmt.Fprintln(a.out, "no differences")
				return nil
			}

			f := cd.textOrJSON()
			// Comments would show up as noise
			left.ClearComments()
			right.ClearComments()
			lt, err := cfgtree.WriteString(f, left)
			if err != nil {
				return err
			}
			rt, err := cfgtree.WriteString(f, right)
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "%s %s\n%s %s\n", color.RedString("---"), args[0], color.GreenString("+++"), args[1])
			a.printLineDiff(lt, rt)
			return errDifferent
		},
	}
	return cmd
}

func (a *app) printLineDiff(from, to string) {
	dmp := diffmatchpatch.New()
	fc, tc, lines := dmp.DiffLinesToChars(from, to)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(fc, tc, false), lines)
	for _, d := range diffs {
		text := strings.TrimSuffix(d.Text, "\n")
		for _, line := range strings.Split(text, "\n") {
			switch d.Type {
			case diffmatchpatch.DiffInsert:
				fmt.Fprintln(a.out, color.GreenString("+"+line))
			case diffmatchpatch.DiffDelete:
				fmt.Fprintln(a.out, color.RedString("-"+line))
			default:
				fmt.Fprintln(a.out, " "+line)
			}
		}
	}
}

func (a *app) findCmd() *cobra.Command {
	var paths []string
	cmd := &cobra.Command{
		Use:   "find <name>",
		Short: "Locate the configuration file of an application",
		Long: `Find checks the NAME_CONFIG environment variable, then searches the given
paths, the current directory and the XDG config directories for name plus
any known extension.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := format.DefaultDiscoveryOptions(args[0])
			opts.Paths = paths
			for _, dir := range format.SearchPaths(opts) {
				a.logger.Debug().Str("dir", dir).Msg("search path")
			}

			path, ok := format.Discover(opts)
			if !ok {
				return fmt.Errorf("%w: no %s%s in the search paths", cfgtree.ErrConfigNotFound,
					args[0], "{"+strings.Join(opts.Extensions, ",")+"}")
			}
			abs, err := filepath.Abs(path)
			if err != nil {
				abs = path
			}
			fmt.Fprintln(a.out, abs)
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&paths, "path", "p", nil, "additional directory to search (repeatable)")
	return cmd
}
