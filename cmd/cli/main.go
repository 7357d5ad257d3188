package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"hypotest/adapters/excel"
	"hypotest/domain/analysis"
	"hypotest/domain/dataset"
	"hypotest/internal/hypothesis"
	"hypotest/internal/testkit"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "hypotest-cli",
		Short:         "Run hypothesis tests on spreadsheets without the HTTP service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newTestsCmd(),
		newRunCmd(),
		newGenerateCmd(),
	)
	return rootCmd
}

func newTestsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tests",
		Short: "List the available tests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDISPLAY NAME\tRESULT PREFIX")
			for _, e := range hypothesis.NewCatalog().Entries() {
				fmt.Fprintf(w, "%s\t%s\t%s\n", e.Name, e.DisplayName, e.ResultPrefix)
			}
			return w.Flush()
		},
	}
}

func newRunCmd() *cobra.Command {
	var out string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "run [test] [file]",
		Short: "Run a test on an .xlsx or .csv file",
		Long: `Run one of the catalog tests on a spreadsheet and print the result table.

Two-sample tests read the first two columns. ANOVA reads the "group" and "score" columns.

Example: hypotest-cli run anova scores.xlsx --out anova_result.xlsx`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTest(cmd.Context(), cmd.OutOrStdout(), args[0], args[1], out, asJSON)
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Write the result workbook to this .xlsx path")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")

	return cmd
}

func runTest(ctx context.Context, w io.Writer, testName, file, out string, asJSON bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	test, err := hypothesis.NewCatalog().Lookup(testName)
	if err != nil {
		return err
	}

	reader, err := excel.NewDataReader(file)
	if err != nil {
		return err
	}
	frame, err := reader.ReadFrame()
	if err != nil {
		return err
	}

	start := time.Now()
	res, err := test.Run(ctx, frame)
	if err != nil {
		return fmt.Errorf("%s failed: %w", test.Name(), err)
	}
	elapsed := time.Since(start)

	if out != "" {
		if err := excel.SaveResult(out, res); err != nil {
			return err
		}
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	fmt.Fprintf(w, "%s (%s)\n", test.DisplayName(), test.Name())
	fmt.Fprintf(w, "Method: %s\n", res.Decision.Method)
	fmt.Fprintf(w, "Elapsed: %v\n\n", elapsed.Round(time.Microsecond))
	if err := printTable(w, res.Table); err != nil {
		return err
	}
	if res.Nested {
		fmt.Fprintln(w)
		if !res.Post() {
			fmt.Fprintln(w, "No significant difference between groups, post-hoc comparisons skipped.")
		} else {
			fmt.Fprintln(w, excel.PostHocTitle)
			if err := printTable(w, res.PostHoc); err != nil {
				return err
			}
		}
	}
	if out != "" {
		fmt.Fprintf(w, "\nResult workbook written to %s\n", out)
	}
	return nil
}

func printTable(w io.Writer, t *analysis.Table) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, c := range t.Columns() {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, c)
	}
	fmt.Fprintln(tw)
	for r := 0; r < t.Len(); r++ {
		for i, v := range t.Row(r) {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			if v != nil {
				fmt.Fprint(tw, v)
			}
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func newGenerateCmd() *cobra.Command {
	var seed int64
	var welch, significant bool
	var out string

	cmd := &cobra.Command{
		Use:       "generate [anova|twosample]",
		Short:     "Write a synthetic dataset for trying the tests",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"anova", "twosample"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var frame *dataset.Frame
			switch args[0] {
			case "anova":
				config := testkit.DefaultANOVAConfig(welch, significant)
				config.Seed = seed
				frame = testkit.NewANOVAGenerator(config).Frame()
			case "twosample":
				meanB := 50.0
				if significant {
					meanB = 55
				}
				frame = testkit.TwoSampleFrame(seed, 30, 50, meanB, 5)
			default:
				return fmt.Errorf("unknown dataset kind %q, expected anova or twosample", args[0])
			}

			if out == "" {
				out = args[0] + "_sample.xlsx"
			}
			if err := excel.SaveFrame(out, frame); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s\n", len(frame.Rows), out)
			return nil
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic output")
	cmd.Flags().BoolVar(&welch, "welch", false, "Use unequal spreads so ANOVA takes the Welch path")
	cmd.Flags().BoolVar(&significant, "significant", true, "Make one group clearly different")
	cmd.Flags().StringVar(&out, "out", "", "Output .xlsx path (default <kind>_sample.xlsx)")

	return cmd
}
