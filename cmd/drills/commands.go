package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/liamcoop/drills/checks"
	"github.com/liamcoop/drills/exercises"
	"github.com/liamcoop/drills/internal/config"
	"github.com/liamcoop/drills/internal/logger"
)

const demoHeader = "---- Exercise -----"

// errChecksFailed makes the process exit non-zero without repeating the
// per-check report.
var errChecksFailed = errors.New("checks failed")

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "drills",
		Short:         "Run the exercise drills",
		Long:          "With no subcommand, drills prints the demonstration: one line per exercise call.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return logger.Setup(cmd.Context(), loggerOptions(cfg))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd.OutOrStdout(), verbose)
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print each call before its result")

	demo := &cobra.Command{
		Use:   "demo",
		Short: "Print the demonstration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd.OutOrStdout(), verbose)
		},
	}

	root.AddCommand(
		demo,
		operationCmd("find-max <a> <b>", "findMax", "Print the larger of two numbers"),
		operationCmd("landscape <width> <height>", "isLandscape", "Report whether width exceeds height"),
		operationCmd("fizzbuzz <value>", "fizzBuzz", "Classify a value as Fizz, Buzz or FizzBuzz"),
		operationCmd("speed <kmh>", "checkSpeed", "Convert a speed into penalty points"),
		operationCmd("truthy [values...]", "countTruthy", "Count the truthy values"),
		operationCmd("grade <scores...>", "calculateGrade", "Map the mean score to a letter grade"),
		operationCmd("stars <rows>", "showStars", "Draw a triangle of stars"),
		operationCmd("typeof <value>", "typeOf", "Print the dynamic type of a value"),
		checkCmd(),
		catalogCmd(),
	)

	return root
}

func loggerOptions(cfg config.Config) logger.Options {
	return logger.Options{
		Level:           cfg.LogLevel,
		ErrorSampleRate: cfg.ErrorSampleRate,
		OTELEnabled:     cfg.OTELEnabled,
		ServiceName:     cfg.OTELServiceName,
	}
}

// runDemo prints the header and then the result of every demonstration
// step in order.
func runDemo(w io.Writer, verbose bool) error {
	fmt.Fprintln(w, demoHeader)
	for _, step := range exercises.DemoSteps() {
		result, err := step.Run()
		if err != nil {
			return fmt.Errorf("%s: %w", step, err)
		}
		if verbose {
			fmt.Fprintf(w, "%s => ", step)
		}
		fmt.Fprintln(w, exercises.FormatResult(result))
	}
	return nil
}

// operationCmd builds a subcommand that invokes one registry operation with
// its arguments parsed as literals. Flag parsing is off so negative numbers
// such as -9 stay positional.
func operationCmd(use, op, short string) *cobra.Command {
	return &cobra.Command{
		Use:                use,
		Short:              short,
		Long:               short + ".\n\nArguments are literals: numbers, true, false, null, NaN or text.",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 && args[0] == "--" {
				args = args[1:]
			} else if len(args) == 1 && (args[0] == "-h" || args[0] == "--help") {
				return cmd.Help()
			}

			values := make([]exercises.Value, len(args))
			for i, arg := range args {
				values[i] = exercises.ParseValue(arg)
			}

			result, err := exercises.Invoke(op, values)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), exercises.FormatResult(result))
			return nil
		},
	}
}

func checkCmd() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "check <expression>",
		Short: "Evaluate a CEL expression over the exercise functions",
		Example: `  drills check 'fizzBuzz(15) == "FizzBuzz"'
  drills check --input 92 'checkSpeed(input)'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := checks.NewEngine(checks.NewInMemoryCheckStore())
			if err != nil {
				return err
			}

			facts := map[string]any{}
			if cmd.Flags().Changed("input") {
				facts[checks.InputVariable] = exercises.ParseValue(input).Native()
			}

			result, err := engine.EvaluateExpression(args[0], facts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatOutput(result.Output))
			if _, ok := result.Output.(bool); ok && !result.Passed {
				return errChecksFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "Literal bound to the input variable")

	return cmd
}

func catalogCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Run a check catalog and report every result",
		Long:  "Runs the built-in catalog, or the YAML catalog given by --file, and exits non-zero when any check fails.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := loadCatalog(file)
			if err != nil {
				return err
			}
			return runCatalog(cmd.OutOrStdout(), catalog)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML catalog file")

	return cmd
}

func loadCatalog(path string) ([]*checks.Check, error) {
	if path == "" {
		return checks.DefaultCatalog(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	return checks.LoadCatalog(f)
}

func runCatalog(w io.Writer, catalog []*checks.Check) error {
	engine, err := checks.NewEngine(checks.NewInMemoryCheckStore())
	if err != nil {
		return err
	}
	if err := checks.Seed(engine, catalog); err != nil {
		return err
	}

	results, err := engine.EvaluateAll(nil)
	if err != nil {
		return err
	}

	var failed int
	for _, r := range results {
		switch {
		case r.Error != nil:
			failed++
			fmt.Fprintf(w, "FAIL %s: %v\n", r.CheckID, r.Error)
		case !r.Passed:
			failed++
			fmt.Fprintf(w, "FAIL %s: got %s\n", r.CheckID, formatOutput(r.Output))
		default:
			fmt.Fprintf(w, "ok   %s\n", r.CheckID)
		}
	}
	fmt.Fprintf(w, "%d passed, %d failed\n", len(results)-failed, failed)

	logger.CountFailedChecks(failed)
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errChecksFailed, failed, len(results))
	}
	return nil
}

// formatOutput renders a check output the way the exercises print values.
func formatOutput(out any) string {
	switch o := out.(type) {
	case []any:
		parts := make([]string, len(o))
		for i, e := range o {
			parts[i] = formatOutput(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	if v, err := exercises.FromNative(out); err == nil {
		return v.String()
	}
	return fmt.Sprint(out)
}
