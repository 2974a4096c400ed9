package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"semsim/config"
	"semsim/internal/domain"
	"semsim/internal/usecase"
)

var (
	classifyAnchors   string
	classifyFile      string
	classifyMode      string
	classifyAggregate string
	classifyJSON      bool
	classifyQuiet     bool
)

var classifyCmd = &cobra.Command{
	Use:   "classify [text...]",
	Short: "Classify texts against labelled anchor examples",
	Long: `Classify each text by its mean cosine similarity to the example texts of
every anchor label. The label with the highest score wins; exact ties go to the
label declared first.

Anchors come from the classify.anchors section of the config, or from a YAML
file given with --anchors:

  - label: Supportive
    examples: ["I fully support this proposal."]
  - label: Opposed
    examples: ["I strongly oppose this decision."]

Examples:
  semsim classify "What a great idea"
  semsim classify --file comments.txt --mode per-item --json
  semsim classify --anchors topics.yaml --aggregate max "The cat sat down"`,
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().StringVar(&classifyAnchors, "anchors", "", "YAML file with anchor labels and examples")
	classifyCmd.Flags().StringVarP(&classifyFile, "file", "f", "", "read texts from file, one per line (- for stdin)")
	classifyCmd.Flags().StringVar(&classifyMode, "mode", "", "batch mode: fail-fast or per-item (default from config)")
	classifyCmd.Flags().StringVar(&classifyAggregate, "aggregate", "", "score aggregation: mean or max (default from config)")
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "output as JSON")
	classifyCmd.Flags().BoolVar(&classifyQuiet, "quiet", false, "hide the progress bar")
}

// ClassifyOutput is one classified text as printed and recorded.
type ClassifyOutput struct {
	Index  int                 `json:"index"`
	Text   string              `json:"text"`
	Label  string              `json:"label,omitempty"`
	Scores []domain.LabelScore `json:"scores,omitempty"`
	Error  string              `json:"error,omitempty"`
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	texts, err := readTexts(args, classifyFile)
	if err != nil {
		return err
	}
	if len(texts) == 0 {
		return errors.New("nothing to classify: pass texts as arguments or with --file")
	}

	defs := cfg.Classify.Anchors
	if classifyAnchors != "" {
		defs, err = config.LoadAnchors(classifyAnchors)
		if err != nil {
			return fmt.Errorf("failed to load anchors: %w", err)
		}
	}

	emb, err := newEmbedder(cfg)
	if err != nil {
		return err
	}
	eng, err := newEngine(cfg, classifyMode, classifyAggregate)
	if err != nil {
		return err
	}
	history, closeHistory, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer closeHistory()

	uc := usecase.NewClassifyUseCase(emb, eng, useCaseOptions(cfg, "Embedding", classifyQuiet || classifyJSON))

	anchors, err := uc.BuildAnchors(cmd.Context(), defs)
	if err != nil {
		return fmt.Errorf("failed to build anchors: %w", err)
	}

	items, err := uc.Classify(cmd.Context(), anchors, texts)
	if err != nil {
		return fmt.Errorf("classification failed: %w", err)
	}

	out := make([]ClassifyOutput, len(items))
	failed := 0
	for i, item := range items {
		out[i] = ClassifyOutput{Index: item.Index, Text: item.Text}
		if item.Err != nil {
			out[i].Error = item.Err.Error()
			failed++
			continue
		}
		out[i].Label = item.Result.Label
		out[i].Scores = item.Result.Scores
	}

	record(history, domain.RunClassify, emb.ModelName(),
		fmt.Sprintf("%d texts, %d labels, %d failed", len(texts), anchors.Len(), failed), out)

	if classifyJSON {
		return printJSON(out)
	}

	for _, o := range out {
		if o.Error != "" {
			fmt.Printf("[%d] ERROR %s\n", o.Index, o.Error)
			continue
		}
		fmt.Printf("[%d] %-12s %s\n", o.Index, o.Label, truncate(o.Text, 60))
		for _, s := range o.Scores {
			fmt.Printf("      %-12s %.4f\n", s.Label, s.Score)
		}
	}
	if failed > 0 {
		fmt.Printf("\n%d of %d texts could not be classified\n", failed, len(texts))
	}
	return nil
}
