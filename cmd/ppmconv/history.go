// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/ppmconv/internal/history"
	"github.com/pdiddy/ppmconv/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the conversion history (list, export)",
	Long: `History reads the SQLite ledger written by runs made with --history
(or history.enabled in ppmconv.yaml). The ledger lives in .ppmconv/history.db
unless --history-dir says otherwise.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded conversions, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := openHistoryStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.List(cmd.Context(), historyQueryFromFlags(cmd))
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatHistoryList(cmd.OutOrStdout(), results, jsonOutput)
}

func formatHistoryList(w io.Writer, results []types.Conversion, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Fprintln(w, "No conversions recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-20s  %-40s  %-11s  %-8s  %s\n",
		"Converted", "Source", "Size", "Replaced", "Output")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for _, c := range results {
		src := c.Source
		if len(src) > 40 {
			src = "..." + src[len(src)-37:]
		}
		replaced := "no"
		if c.Replaced {
			replaced = "yes"
		}
		fmt.Fprintf(w, "%-20s  %-40s  %-11s  %-8s  %s\n",
			c.ConvertedAt.Local().Format("2006-01-02 15:04:05"), src,
			fmt.Sprintf("%dx%d", c.Width, c.Height), replaced, c.Output)
	}

	fmt.Fprintf(w, "\n%d conversions\n", len(results))
	return nil
}

// --- export subcommand ---

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the history to YAML or JSON",
	Long: `Export writes recorded runs and conversions to stdout, or to --output.
The same --source and --run filters as list apply.`,
	Args: cobra.NoArgs,
	RunE: runHistoryExport,
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("output")

	store, err := openHistoryStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	w := cmd.OutOrStdout()
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", outPath, err)
		}
		defer f.Close()
		w = f
	}

	opts := historyQueryFromFlags(cmd)
	switch format {
	case "yaml", "":
		err = store.ExportYAML(cmd.Context(), opts, w)
	case "json":
		err = store.ExportJSON(cmd.Context(), opts, w)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	if outPath != "" {
		fmt.Fprintf(os.Stderr, "Exported to %s\n", outPath)
	}
	return nil
}

// --- shared helpers ---

func openHistoryStore(cmd *cobra.Command) (*history.Store, error) {
	cfg, err := loadConfig(viper.GetViper(), cmd)
	if err != nil {
		return nil, err
	}
	cmd.SilenceUsage = true
	if _, err := os.Stat(cfg.History.Dir); os.IsNotExist(err) {
		return nil, fmt.Errorf("no history in %s: run with --history first", cfg.History.Dir)
	}
	return history.Open(cfg.History)
}

func historyQueryFromFlags(cmd *cobra.Command) history.QueryOptions {
	source, _ := cmd.Flags().GetString("source")
	runID, _ := cmd.Flags().GetString("run")
	limit, _ := cmd.Flags().GetInt("limit")
	return history.QueryOptions{
		Source:     source,
		RunID:      runID,
		MaxResults: limit,
	}
}

func init() {
	historyListCmd.Flags().String("source", "", "only conversions whose source path contains this text")
	historyListCmd.Flags().String("run", "", "only conversions from this run ID")
	historyListCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	historyListCmd.Flags().Bool("json", false, "output results as JSON")

	historyExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	historyExportCmd.Flags().String("output", "", "write to this file instead of stdout")
	historyExportCmd.Flags().String("source", "", "only conversions whose source path contains this text")
	historyExportCmd.Flags().String("run", "", "only conversions from this run ID")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyExportCmd)

	rootCmd.AddCommand(historyCmd)
}
