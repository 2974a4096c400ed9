package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"semsim/config"
	"semsim/internal/adapter/analyzer"
	"semsim/internal/domain"
	"semsim/internal/usecase"
)

var (
	sentimentAnchors string
	sentimentJSON    bool
)

var sentimentCmd = &cobra.Command{
	Use:   "sentiment <text>",
	Short: "Score the sentiment of a text",
	Long: `Classify a text against the sentiment anchors (classify.anchors in the
config, or --anchors) and report the winning label with every label's score.

Examples:
  semsim sentiment "This is a terrible idea"
  semsim sentiment --json "I welcome this step"`,
	Args: cobra.ExactArgs(1),
	RunE: runSentiment,
}

func init() {
	rootCmd.AddCommand(sentimentCmd)
	sentimentCmd.Flags().StringVar(&sentimentAnchors, "anchors", "", "YAML file with sentiment labels and examples")
	sentimentCmd.Flags().BoolVar(&sentimentJSON, "json", false, "output as JSON")
}

func runSentiment(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	defs := cfg.Classify.Anchors
	if sentimentAnchors != "" {
		var err error
		defs, err = config.LoadAnchors(sentimentAnchors)
		if err != nil {
			return fmt.Errorf("failed to load anchors: %w", err)
		}
	}
	if len(defs) == 0 {
		return errors.New("no sentiment anchors configured")
	}

	emb, err := newEmbedder(cfg)
	if err != nil {
		return err
	}
	eng, err := newEngine(cfg, "", "")
	if err != nil {
		return err
	}
	history, closeHistory, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer closeHistory()

	classify := usecase.NewClassifyUseCase(emb, eng, useCaseOptions(cfg, "", true))
	tasks := usecase.NewTaskUseCase(classify, analyzer.NewTokenizer(false), cfg.Classify.EntityThreshold)

	anchors, err := classify.BuildAnchors(cmd.Context(), defs)
	if err != nil {
		return fmt.Errorf("failed to build anchors: %w", err)
	}
	res, err := tasks.Sentiment(cmd.Context(), anchors, args[0])
	if err != nil {
		return err
	}

	record(history, domain.RunTask, emb.ModelName(), "sentiment: "+res.Label, res)

	if sentimentJSON {
		data, err := domain.MarshalTaskResult(res)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("%s (%.4f)\n", res.Label, res.Score)
	for _, s := range res.Scores {
		fmt.Printf("  %-12s %.4f\n", s.Label, s.Score)
	}
	return nil
}
