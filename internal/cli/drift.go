package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"semsim/internal/adapter/fs"
	"semsim/internal/domain"
	"semsim/internal/usecase"
)

var (
	driftDims     int
	driftIncludes []string
	driftExcludes []string
	driftPoints   bool
	driftJSON     bool
	driftQuiet    bool
)

var driftCmd = &cobra.Command{
	Use:   "drift <dir> [dir...]",
	Short: "Project text samples from several directories to spot drift",
	Long: `Read every text file under each directory, embed them, and project the
embeddings onto their principal axes. Each directory is reported with its
centroid in the projected space and the cosine similarity of its mean
embedding to that of the first directory.

Examples:
  semsim drift ./feedback/2023 ./feedback/2024
  semsim drift -k 3 --include "**/*.log" ./a ./b --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDrift,
}

func init() {
	rootCmd.AddCommand(driftCmd)
	driftCmd.Flags().IntVarP(&driftDims, "dimensions", "k", 0, "number of projected axes (default from config)")
	driftCmd.Flags().StringArrayVar(&driftIncludes, "include", nil, "glob of files to read (repeatable, default from config)")
	driftCmd.Flags().StringArrayVar(&driftExcludes, "exclude", nil, "glob of files to skip (repeatable, default from config)")
	driftCmd.Flags().BoolVar(&driftPoints, "points", false, "print every projected sample")
	driftCmd.Flags().BoolVar(&driftJSON, "json", false, "output as JSON")
	driftCmd.Flags().BoolVar(&driftQuiet, "quiet", false, "hide the progress bar")
}

func runDrift(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	k := cfg.Project.Dimensions
	if driftDims > 0 {
		k = driftDims
	}
	includes, excludes := cfg.Project.Includes, cfg.Project.Excludes
	if len(driftIncludes) > 0 {
		includes = driftIncludes
	}
	if len(driftExcludes) > 0 {
		excludes = driftExcludes
	}

	sources := make([]string, len(args))
	for i, a := range args {
		p, err := filepath.Abs(a)
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
		sources[i] = p
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

	walker := fs.NewWalker(includes, excludes, cfg.Project.MaxBytes)
	uc := usecase.NewDriftUseCase(emb, walker, fs.Reader{}, useCaseOptions(cfg, "Embedding", driftQuiet || driftJSON))

	report, err := uc.Project(cmd.Context(), sources, k)
	if err != nil {
		return fmt.Errorf("projection failed: %w", err)
	}

	record(history, domain.RunDrift, emb.ModelName(),
		fmt.Sprintf("%d samples from %d sources, k=%d", len(report.Points), len(report.Sources), k), report)

	if driftJSON {
		return printJSON(report)
	}

	fmt.Printf("Explained variance: %s\n\n", formatFloats(report.ExplainedVariance))
	for _, s := range report.Sources {
		fmt.Printf("%s\n", s.Source)
		fmt.Printf("  Samples:             %d\n", s.Samples)
		fmt.Printf("  Centroid:            %s\n", formatFloats(s.Centroid))
		fmt.Printf("  Baseline similarity: %.4f\n", s.BaselineSimilarity)
	}

	if driftPoints {
		fmt.Println()
		for _, p := range report.Points {
			fmt.Printf("%s  %s/%s\n", formatFloats(p.Coords), filepath.Base(p.Source), p.Path)
		}
	}
	return nil
}

func formatFloats(v []float64) string {
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = fmt.Sprintf("%.4f", f)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
