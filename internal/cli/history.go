package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"semsim/internal/domain"
)

var (
	historyKind  string
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List and inspect recorded runs",
	Long: `Runs are recorded in .semsim/history.db when history.enabled is set.

Examples:
  semsim history                  # Latest runs
  semsim history --kind classify  # Only classification runs
  semsim history show <id>        # Full output of one run
  semsim history delete <id>`,
	RunE: runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print the recorded output of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a recorded run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every recorded run",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClear,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd, historyDeleteCmd, historyClearCmd)
	historyCmd.Flags().StringVar(&historyKind, "kind", "", "only runs of this kind: classify, compare, drift, task")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of runs (0 for all)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output as JSON")
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	history, closeHistory, err := openHistory(GetConfig())
	if err != nil {
		return err
	}
	defer closeHistory()

	if !history.Enabled() {
		fmt.Println("History is disabled (history.enabled: false).")
		return nil
	}

	runs, err := history.List(domain.RunKind(historyKind), historyLimit)
	if err != nil {
		return err
	}

	if historyJSON {
		return printJSON(runs)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}
	for _, r := range runs {
		fmt.Printf("%s  %s  %-8s %-22s %s\n", r.ID, r.CreatedAt.Local().Format(time.DateTime), r.Kind, truncate(r.Model, 22), r.Summary)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	history, closeHistory, err := openHistory(GetConfig())
	if err != nil {
		return err
	}
	defer closeHistory()

	run, err := history.Get(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("ID:      %s\n", run.ID)
	fmt.Printf("Kind:    %s\n", run.Kind)
	fmt.Printf("Model:   %s\n", run.Model)
	fmt.Printf("Created: %s\n", run.CreatedAt.Local().Format(time.RFC3339))
	fmt.Printf("Summary: %s\n\n", run.Summary)

	var buf bytes.Buffer
	if err := json.Indent(&buf, run.Payload, "", "  "); err != nil {
		return fmt.Errorf("run %s has an unreadable payload: %w", run.ID, err)
	}
	fmt.Println(buf.String())
	return nil
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	history, closeHistory, err := openHistory(GetConfig())
	if err != nil {
		return err
	}
	defer closeHistory()

	if err := history.Delete(args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted run %s\n", args[0])
	return nil
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	history, closeHistory, err := openHistory(GetConfig())
	if err != nil {
		return err
	}
	defer closeHistory()

	if err := history.Clear(); err != nil {
		return err
	}
	fmt.Println("History cleared.")
	return nil
}
