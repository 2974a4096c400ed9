package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"semsim/config"
	"semsim/internal/adapter/embedding"
	"semsim/internal/domain"
	"semsim/internal/engine"
	"semsim/internal/usecase"
)

func main() {
	dir := flag.String("dir", ".", "Directory holding semsim.yaml")
	setPath := flag.String("set", "", "YAML file of labelled test texts, same layout as an anchor file")
	anchorsPath := flag.String("anchors", "", "Anchor file (default: classify.anchors from config)")
	aggregate := flag.String("aggregate", "", "Aggregation: mean or max (default from config)")
	flag.Parse()

	if *setPath == "" {
		fmt.Println("Usage: go run cmd/benchmark/main.go -set testset.yaml [-anchors anchors.yaml] [-dir .]")
		fmt.Println("\nReports:")
		fmt.Println("  1. Accuracy of nearest-anchor classification per label")
		fmt.Println("  2. Confusion between labels")
		fmt.Println("  3. Mean decision margin (winner minus runner-up)")
		os.Exit(1)
	}

	if err := config.LoadDotEnv(*dir); err != nil {
		fail("Error loading .env", err)
	}
	cfg, err := config.LoadFromDir(*dir)
	if err != nil {
		fail("Error loading config", err)
	}

	defs := cfg.Classify.Anchors
	if *anchorsPath != "" {
		if defs, err = config.LoadAnchors(*anchorsPath); err != nil {
			fail("Error loading anchors", err)
		}
	}
	testSet, err := config.LoadAnchors(*setPath)
	if err != nil {
		fail("Error loading test set", err)
	}

	opts, err := embedding.OptionsFromConfig(cfg.Embedding)
	if err != nil {
		fail("Embedder config invalid", err)
	}
	embedder, err := embedding.New(opts, zerolog.Nop())
	if err != nil {
		fail("Embedder init failed", err)
	}

	if *aggregate == "" {
		*aggregate = cfg.Classify.Aggregate
	}
	agg, err := engine.ParseAggregator(*aggregate)
	if err != nil {
		fail("Invalid aggregation", err)
	}
	eng := engine.New(engine.WithBatchMode(engine.PerItem), engine.WithAggregator(agg))
	uc := usecase.NewClassifyUseCase(embedder, eng, usecase.Options{
		BatchSize:   cfg.Embedding.BatchSize,
		Concurrency: cfg.Embedding.Concurrency,
	})

	ctx := context.Background()
	anchors, err := uc.BuildAnchors(ctx, defs)
	if err != nil {
		fail("Building anchors failed", err)
	}

	fmt.Println("CLASSIFICATION BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Model: %s (%s)\n", embedder.ModelName(), cfg.Embedding.Provider)
	fmt.Printf("Labels: %s\n", strings.Join(anchors.Labels(), ", "))
	fmt.Printf("Aggregation: %s\n\n", agg.Name())

	confusion := make(map[string]map[string]int)
	var correct, total, failed int
	var marginSum float64

	for _, want := range testSet {
		if anchors.Examples(want.Label) == nil {
			fmt.Printf("Warning: test label %q has no anchors, skipping\n", want.Label)
			continue
		}
		items, err := uc.Classify(ctx, anchors, want.Texts)
		if err != nil {
			fail("Classification failed", err)
		}
		confusion[want.Label] = make(map[string]int)
		for _, item := range items {
			total++
			if item.Err != nil {
				failed++
				fmt.Printf("  ERROR %s\n", item.Err)
				continue
			}
			confusion[want.Label][item.Result.Label]++
			marginSum += item.Result.Margin()
			if item.Result.Label == want.Label {
				correct++
			}
		}
	}

	if total == 0 {
		fmt.Println("No test texts matched an anchor label.")
		os.Exit(1)
	}

	fmt.Println("Per label:")
	for _, label := range anchors.Labels() {
		row, ok := confusion[label]
		if !ok {
			continue
		}
		n := 0
		for _, c := range row {
			n += c
		}
		fmt.Printf("  %-16s %3d/%-3d %s\n", label, row[label], n, confusionLine(row, anchors))
	}

	accuracy := float64(correct) / float64(total)
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("QUALITY METRICS:\n")
	fmt.Printf("  Accuracy:     %.3f (%d/%d)\n", accuracy, correct, total)
	if scored := total - failed; scored > 0 {
		fmt.Printf("  Mean margin:  %.3f\n", marginSum/float64(scored))
	}
	if failed > 0 {
		fmt.Printf("  Failed texts: %d\n", failed)
	}

	if accuracy > 0.8 {
		fmt.Println("  Status: GOOD - anchors separate the labels well")
	} else if accuracy > 0.5 {
		fmt.Println("  Status: OK - some labels overlap")
	} else {
		fmt.Println("  Status: POOR - add or rewrite anchor examples")
	}
}

func confusionLine(row map[string]int, anchors *domain.AnchorSet) string {
	var parts []string
	for _, label := range anchors.Labels() {
		if c := row[label]; c > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", label, c))
		}
	}
	return strings.Join(parts, " ")
}

func fail(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}
