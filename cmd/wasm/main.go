//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"os"
	"syscall/js"

	"github.com/rs/zerolog"
	"semsim/internal/adapter/embedding"
	"semsim/internal/adapter/memstore"
	"semsim/internal/domain"
	"semsim/internal/engine"
	"semsim/internal/port"
	"semsim/internal/usecase"
)

var (
	embedder port.Embedder
	classify *usecase.ClassifyUseCase
	compare  *usecase.CompareUseCase
	history  *usecase.HistoryUseCase
	anchors  *domain.AnchorSet
)

func init() {
	embedder = embedding.NewHashingEmbedder(embedding.DefaultHashingDimension)
	classify = usecase.NewClassifyUseCase(embedder, engine.New(engine.WithBatchMode(engine.PerItem)), usecase.Options{})
	compare = usecase.NewCompareUseCase(embedder, usecase.Options{})
	// Stderr is the browser console under the Go wasm runtime.
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true}).With().Timestamp().Logger()
	history = usecase.NewHistoryUseCase(memstore.NewMemoryStore(), logger)
}

func main() {
	c := make(chan struct{})

	js.Global().Set("semsimSetAnchors", js.FuncOf(setAnchors))
	js.Global().Set("semsimClassify", js.FuncOf(classifyTexts))
	js.Global().Set("semsimCompare", js.FuncOf(compareTexts))
	js.Global().Set("semsimHistory", js.FuncOf(listHistory))

	<-c
}

func setAnchors(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError(`usage: semsimSetAnchors('[{"label": "...", "examples": ["..."]}]')`)
	}

	var defs []domain.LabeledTexts
	if err := json.Unmarshal([]byte(args[0].String()), &defs); err != nil {
		return makeError("invalid anchors: " + err.Error())
	}

	set, err := classify.BuildAnchors(context.Background(), defs)
	if err != nil {
		return makeError(err.Error())
	}
	anchors = set

	return makeResult(map[string]interface{}{
		"success": true,
		"labels":  set.Labels(),
	})
}

func classifyTexts(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: semsimClassify(text, ...)")
	}
	if anchors == nil {
		return makeError("no anchors: call semsimSetAnchors first")
	}

	texts := make([]string, len(args))
	for i, a := range args {
		texts[i] = a.String()
	}

	items, err := classify.Classify(context.Background(), anchors, texts)
	if err != nil {
		return makeError(err.Error())
	}

	output := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		entry := map[string]interface{}{"text": item.Text}
		if item.Err != nil {
			entry["error"] = item.Err.Error()
		} else {
			entry["label"] = item.Result.Label
			entry["scores"] = item.Result.Scores
		}
		output = append(output, entry)
	}

	history.TryRecord(domain.RunClassify, embedder.ModelName(), "browser classify", output)

	return makeResult(map[string]interface{}{
		"results": output,
	})
}

func compareTexts(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: semsimCompare(text, ...)")
	}

	texts := make([]string, len(args))
	for i, a := range args {
		texts[i] = a.String()
	}

	cmp, err := compare.Compare(context.Background(), texts, nil)
	if err != nil {
		return makeError(err.Error())
	}

	history.TryRecord(domain.RunCompare, embedder.ModelName(), "browser compare", cmp)

	return makeResult(map[string]interface{}{
		"texts":       cmp.Rows,
		"matrix":      cmp.Matrix,
		"mostSimilar": cmp.MostSimilar(),
	})
}

func listHistory(this js.Value, args []js.Value) interface{} {
	runs, err := history.List("", 0)
	if err != nil {
		return makeError(err.Error())
	}
	return makeResult(map[string]interface{}{
		"runs": runs,
	})
}

func makeError(msg string) interface{} {
	result, _ := json.Marshal(map[string]interface{}{
		"error": msg,
	})
	return string(result)
}

func makeResult(data map[string]interface{}) interface{} {
	result, _ := json.Marshal(data)
	return string(result)
}
