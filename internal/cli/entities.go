package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"semsim/config"
	"semsim/internal/adapter/analyzer"
	"semsim/internal/domain"
	"semsim/internal/usecase"
)

var (
	entitiesAnchors   string
	entitiesFile      string
	entitiesThreshold float64
	entitiesJSON      bool
)

var entitiesCmd = &cobra.Command{
	Use:   "entities [text]",
	Short: "Find and type capitalised names in a text",
	Long: `Find runs of capitalised words and type each one by nearest-anchor
classification against the entity anchors (classify.entity_anchors in the
config, or --anchors). Candidates scoring below the threshold are dropped.

Examples:
  semsim entities "Ada Lovelace worked with Charles Babbage in London."
  semsim entities --file article.txt --threshold 0.5 --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEntities,
}

func init() {
	rootCmd.AddCommand(entitiesCmd)
	entitiesCmd.Flags().StringVar(&entitiesAnchors, "anchors", "", "YAML file with entity types and examples")
	entitiesCmd.Flags().StringVarP(&entitiesFile, "file", "f", "", "read the text from a file")
	entitiesCmd.Flags().Float64Var(&entitiesThreshold, "threshold", 0, "minimum score to keep an entity (default from config)")
	entitiesCmd.Flags().BoolVar(&entitiesJSON, "json", false, "output as JSON")
}

func runEntities(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	var text string
	switch {
	case entitiesFile != "":
		data, err := os.ReadFile(entitiesFile)
		if err != nil {
			return fmt.Errorf("failed to read text: %w", err)
		}
		text = string(data)
	case len(args) == 1:
		text = args[0]
	default:
		return errors.New("no text: pass it as an argument or with --file")
	}

	defs := cfg.Classify.EntityAnchors
	if entitiesAnchors != "" {
		var err error
		defs, err = config.LoadAnchors(entitiesAnchors)
		if err != nil {
			return fmt.Errorf("failed to load anchors: %w", err)
		}
	}

	threshold := cfg.Classify.EntityThreshold
	if entitiesThreshold > 0 {
		threshold = entitiesThreshold
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
	tasks := usecase.NewTaskUseCase(classify, analyzer.NewTokenizer(false), threshold)

	anchors, err := classify.BuildAnchors(cmd.Context(), defs)
	if err != nil {
		return fmt.Errorf("failed to build entity anchors: %w", err)
	}
	res, err := tasks.Entities(cmd.Context(), anchors, text)
	if err != nil {
		return err
	}

	record(history, domain.RunTask, emb.ModelName(), fmt.Sprintf("entities: %d found", len(res.Entities)), res)

	if entitiesJSON {
		data, err := domain.MarshalTaskResult(res)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	if len(res.Entities) == 0 {
		fmt.Println("No entities found.")
		return nil
	}
	for _, e := range res.Entities {
		fmt.Printf("%-14s %-30s %5d-%-5d %.4f\n", e.Type, e.Text, e.Start, e.End, e.Score)
	}
	return nil
}
