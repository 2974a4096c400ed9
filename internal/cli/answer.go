package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"semsim/internal/adapter/analyzer"
	"semsim/internal/domain"
	"semsim/internal/usecase"
)

var (
	answerQuestion string
	answerContext  string
	answerText     string
	answerJSON     bool
)

var answerCmd = &cobra.Command{
	Use:   "answer",
	Short: "Answer a question with the most similar sentence of a passage",
	Long: `Split a passage into sentences and return the one most similar to the
question, with its byte offsets in the passage.

Examples:
  semsim answer -q "Who designed the engine?" -c notes.txt
  semsim answer -q "Where is the office?" --text "We moved. The office is in Leeds."`,
	RunE: runAnswer,
}

func init() {
	rootCmd.AddCommand(answerCmd)
	answerCmd.Flags().StringVarP(&answerQuestion, "question", "q", "", "question to answer (required)")
	answerCmd.Flags().StringVarP(&answerContext, "context", "c", "", "file holding the passage")
	answerCmd.Flags().StringVar(&answerText, "text", "", "passage given inline")
	answerCmd.Flags().BoolVar(&answerJSON, "json", false, "output as JSON")
	answerCmd.MarkFlagRequired("question")
	answerCmd.MarkFlagsMutuallyExclusive("context", "text")
}

func runAnswer(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	passage := answerText
	if answerContext != "" {
		data, err := os.ReadFile(answerContext)
		if err != nil {
			return fmt.Errorf("failed to read passage: %w", err)
		}
		passage = string(data)
	}
	if passage == "" {
		return errors.New("no passage: use --context or --text")
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

	res, err := tasks.Answer(cmd.Context(), answerQuestion, passage)
	if err != nil {
		return err
	}

	record(history, domain.RunTask, emb.ModelName(), "answer: "+truncate(answerQuestion, 60), res)

	if answerJSON {
		data, err := domain.MarshalTaskResult(res)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Println(res.Answer)
	fmt.Printf("\n  Offsets: %d-%d\n", res.Start, res.End)
	fmt.Printf("  Score:   %.4f\n", res.Score)
	return nil
}
