// sablec compiles template expressions to target code. It parses an
// expression, lowers it through the code-chunk builder and prints the
// emitted code with its requires, or writes a content-hashed artifact.
package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sable-lang/sable/pkgs/artifact"
	"github.com/sable-lang/sable/pkgs/config"
	"github.com/sable-lang/sable/pkgs/dsl"
	"github.com/sable-lang/sable/pkgs/exprtree"
	"github.com/sable-lang/sable/pkgs/generator"
	"github.com/sable-lang/sable/pkgs/lexer"
	"github.com/sable-lang/sable/pkgs/parser"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "sablec",
		Short:         "Compile template expressions to target code",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to sable.json (defaults apply when absent)")

	root.AddCommand(newCompileCmd(&configPath))
	root.AddCommand(newASTCmd(&configPath))
	root.AddCommand(newTokensCmd(&configPath))
	return root
}

// loadConfig resolves the effective configuration: an explicit --config
// path must exist, otherwise sable.json in the working directory is used
// when present, otherwise defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	if _, err := os.Stat(config.DefaultFileName); err == nil {
		return config.Load(config.DefaultFileName)
	}
	return config.Default(), nil
}

// readSource returns the expression text: the --expression flag when set,
// stdin for "-", otherwise the named file.
func readSource(cmd *cobra.Command, args []string, expr string) (string, error) {
	if expr != "" {
		return expr, nil
	}
	if len(args) == 0 {
		return "", fmt.Errorf("no input: pass a file, -, or --expression")
	}
	if args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return string(data), nil
}

func parseSource(cfg *config.Config, source string) (exprtree.Node, error) {
	source = strings.TrimSpace(source)
	if r := cfg.Resolver(); r != nil {
		return parser.ParseWithResolver(source, r)
	}
	return parser.Parse(source)
}

func newCompileCmd(configPath *string) *cobra.Command {
	var (
		expr    string
		outPath string
		watch   bool
	)

	cmd := &cobra.Command{
		Use:   "compile [file|-]",
		Short: "Compile an expression and print the emitted code",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			run := func() error {
				source, err := readSource(cmd, args, expr)
				if err != nil {
					return err
				}
				return compileOne(cmd, cfg, source, outPath)
			}
			if watch {
				if len(args) != 1 || args[0] == "-" {
					return fmt.Errorf("--watch needs a file argument")
				}
				return watchAndRun(cmd, args[0], run)
			}
			return run()
		},
	}
	cmd.Flags().StringVarP(&expr, "expression", "e", "", "Compile the given expression instead of a file")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write a compiled artifact to this path")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Recompile when the input file changes")
	return cmd
}

// compileOne parses and lowers one expression. Without --out the emitted
// code is printed, requires first; with --out a content-hashed artifact is
// written and its hash printed.
func compileOne(cmd *cobra.Command, cfg *config.Config, source string, outPath string) error {
	source = strings.TrimSpace(source)
	node, err := parseSource(cfg, source)
	if err != nil {
		return err
	}
	chunk, err := generator.Translate(node, cfg.GeneratorOptions())
	if err != nil {
		return err
	}

	seen := map[string]bool{}
	chunk.CollectRequires(func(r dsl.Require) {
		seen[r.Symbol] = true
	})
	requires := make([]string, 0, len(seen))
	for symbol := range seen {
		requires = append(requires, symbol)
	}
	sort.Strings(requires)
	code := chunk.Code()

	if outPath != "" {
		unit := &artifact.Unit{Source: source, Code: code, Requires: requires}
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating artifact: %w", err)
		}
		sum, err := artifact.Write(f, unit)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("writing artifact: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %x\n", outPath, sum)
		return nil
	}

	out := cmd.OutOrStdout()
	for _, symbol := range requires {
		fmt.Fprintf(out, "// require: %s\n", symbol)
	}
	fmt.Fprintln(out, code)
	return nil
}

func newASTCmd(configPath *string) *cobra.Command {
	var expr string

	cmd := &cobra.Command{
		Use:   "ast [file|-]",
		Short: "Print the parsed expression tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			source, err := readSource(cmd, args, expr)
			if err != nil {
				return err
			}
			node, err := parseSource(cfg, source)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), exprtree.AstString(node))
			return nil
		},
	}
	cmd.Flags().StringVarP(&expr, "expression", "e", "", "Parse the given expression instead of a file")
	return cmd
}

func newTokensCmd(configPath *string) *cobra.Command {
	var expr string

	cmd := &cobra.Command{
		Use:   "tokens [file|-]",
		Short: "Print the token stream",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readSource(cmd, args, expr)
			if err != nil {
				return err
			}
			tokens, err := lexer.New(strings.TrimSpace(source)).Tokenize()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, tok := range tokens {
				fmt.Fprintf(out, "%d:%d\t%s\t%s\n", tok.Pos.Line, tok.Pos.Column, tok.Type, tok.Text)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&expr, "expression", "e", "", "Tokenize the given expression instead of a file")
	return cmd
}
