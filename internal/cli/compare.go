package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"semsim/internal/domain"
	"semsim/internal/usecase"
)

var (
	compareRefs  []string
	compareFile  string
	compareJSON  bool
	compareQuiet bool
)

var compareCmd = &cobra.Command{
	Use:   "compare [text...]",
	Short: "Print the cosine similarity matrix of texts",
	Long: `Embed the given texts and print their pairwise cosine similarities.
Without --ref every text is compared with every other; with --ref each text is
compared with the reference texts only.

Examples:
  semsim compare "The government passed a law" "Parliament approved the bill" "My cat is asleep"
  semsim compare --file headlines.txt --ref "sports" --ref "politics" --json`,
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
	compareCmd.Flags().StringArrayVar(&compareRefs, "ref", nil, "reference text to compare against (repeatable)")
	compareCmd.Flags().StringVarP(&compareFile, "file", "f", "", "read texts from file, one per line (- for stdin)")
	compareCmd.Flags().BoolVar(&compareJSON, "json", false, "output as JSON")
	compareCmd.Flags().BoolVar(&compareQuiet, "quiet", false, "hide the progress bar")
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	texts, err := readTexts(args, compareFile)
	if err != nil {
		return err
	}
	if len(texts) == 0 {
		return errors.New("nothing to compare: pass texts as arguments or with --file")
	}

	emb, err := newEmbedder(cfg)
	if err != nil {
		return err
	}
	history, closeHistory, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer closeHistory()

	uc := usecase.NewCompareUseCase(emb, useCaseOptions(cfg, "Embedding", compareQuiet || compareJSON))
	cmp, err := uc.Compare(cmd.Context(), texts, compareRefs)
	if err != nil {
		return fmt.Errorf("comparison failed: %w", err)
	}

	record(history, domain.RunCompare, emb.ModelName(),
		fmt.Sprintf("%dx%d matrix", cmp.Matrix.Rows(), cmp.Matrix.Cols()), cmp)

	if compareJSON {
		return printJSON(cmp)
	}

	var sb strings.Builder
	sb.WriteString("      ")
	for j := range cmp.Cols {
		fmt.Fprintf(&sb, " %7s", fmt.Sprintf("[%d]", j))
	}
	fmt.Println(sb.String())
	for i, row := range cmp.Matrix {
		sb.Reset()
		fmt.Fprintf(&sb, "%-6s", fmt.Sprintf("[%d]", i))
		for _, v := range row {
			fmt.Fprintf(&sb, " %7.4f", v)
		}
		fmt.Println(sb.String())
	}

	fmt.Println()
	best := cmp.MostSimilar()
	for i, text := range cmp.Rows {
		line := fmt.Sprintf("[%d] %s", i, truncate(text, 50))
		if best[i] >= 0 {
			line += fmt.Sprintf("  ~ %s", truncate(cmp.Cols[best[i]], 40))
		}
		fmt.Println(line)
	}
	if !cmp.Self {
		fmt.Println("\nColumns:")
		for j, ref := range cmp.Cols {
			fmt.Printf("[%d] %s\n", j, truncate(ref, 70))
		}
	}
	return nil
}
