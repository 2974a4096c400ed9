package usecase

import (
	"context"
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"

	"semsim/internal/adapter/analyzer"
	"semsim/internal/domain"
	"semsim/internal/engine"
)

// DefaultEntityThreshold is the minimum score an entity candidate needs.
const DefaultEntityThreshold = 0.3

var (
	// ErrNoSentences is returned by Answer when the passage has no sentence.
	ErrNoSentences = errors.New("passage contains no sentences")
	// ErrNoAnswer is returned by Answer when no sentence can be scored.
	ErrNoAnswer = errors.New("no sentence of the passage could be scored")
)

// TaskUseCase runs the task variants on top of nearest-anchor classification.
type TaskUseCase struct {
	classify  *ClassifyUseCase
	tokenizer *analyzer.Tokenizer
	threshold float64
}

// NewTaskUseCase creates a new task use case. A threshold of zero or less
// uses DefaultEntityThreshold.
func NewTaskUseCase(classify *ClassifyUseCase, tokenizer *analyzer.Tokenizer, threshold float64) *TaskUseCase {
	if threshold <= 0 {
		threshold = DefaultEntityThreshold
	}
	return &TaskUseCase{
		classify:  classify,
		tokenizer: tokenizer,
		threshold: threshold,
	}
}

// Sentiment classifies text against sentiment anchors.
func (u *TaskUseCase) Sentiment(ctx context.Context, anchors *domain.AnchorSet, text string) (domain.SentimentResult, error) {
	res, err := u.classify.ClassifyOne(ctx, anchors, text)
	if err != nil {
		return domain.SentimentResult{}, err
	}
	score, _ := res.Score(res.Label)
	return domain.SentimentResult{Label: res.Label, Score: score, Scores: res.Scores}, nil
}

// Answer picks the sentence of passage most similar to question. Sentences
// that embed to a degenerate vector are skipped; ties go to the earliest.
func (u *TaskUseCase) Answer(ctx context.Context, question, passage string) (domain.SpanAnswerResult, error) {
	sentences := u.tokenizer.Sentences(passage)
	if len(sentences) == 0 {
		return domain.SpanAnswerResult{}, ErrNoSentences
	}

	texts := make([]string, 0, len(sentences)+1)
	texts = append(texts, question)
	for _, s := range sentences {
		texts = append(texts, s.Text)
	}

	vecs, err := EmbedTexts(ctx, u.classify.embedder, texts, u.classify.opts)
	if err != nil {
		return domain.SpanAnswerResult{}, err
	}
	if err := engine.Validate(vecs[0], "question"); err != nil {
		return domain.SpanAnswerResult{}, attachText(err, "question", question)
	}

	best := -1
	var bestScore float64
	for i := range sentences {
		sim, err := engine.CosineSimilarity(vecs[0], vecs[i+1])
		if err != nil {
			var deg *domain.DegenerateInputError
			if errors.As(err, &deg) {
				continue
			}
			return domain.SpanAnswerResult{}, fmt.Errorf("sentence %d: %w", i, err)
		}
		if best < 0 || sim > bestScore {
			best, bestScore = i, sim
		}
	}
	if best < 0 {
		return domain.SpanAnswerResult{}, ErrNoAnswer
	}

	s := sentences[best]
	return domain.SpanAnswerResult{Answer: s.Text, Start: s.Start, End: s.End, Score: bestScore}, nil
}

// Entities finds runs of capitalised words in text and types each against
// the entity anchors. Candidates scoring below the threshold are dropped.
func (u *TaskUseCase) Entities(ctx context.Context, anchors *domain.AnchorSet, text string) (domain.EntityResult, error) {
	if anchors.Len() == 0 {
		return domain.EntityResult{}, &domain.EmptyAnchorSetError{}
	}

	candidates := u.candidates(text)
	result := domain.EntityResult{Entities: []domain.Entity{}}
	if len(candidates) == 0 {
		return result, nil
	}

	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.Text
	}
	vecs, err := EmbedTexts(ctx, u.classify.embedder, texts, u.classify.opts)
	if err != nil {
		return domain.EntityResult{}, err
	}

	for i, c := range candidates {
		res, err := u.classify.engine.Classify(vecs[i], anchors)
		if err != nil {
			var deg *domain.DegenerateInputError
			if errors.As(err, &deg) && deg.Item == "query" {
				continue
			}
			return domain.EntityResult{}, fmt.Errorf("candidate %q: %w", c.Text, err)
		}
		score, _ := res.Score(res.Label)
		if score < u.threshold {
			continue
		}
		result.Entities = append(result.Entities, domain.Entity{
			Text:  c.Text,
			Type:  res.Label,
			Start: c.Start,
			End:   c.End,
			Score: score,
		})
	}

	return result, nil
}

// candidates groups adjacent capitalised words separated only by spaces.
// Stopwords never start or join a candidate.
func (u *TaskUseCase) candidates(text string) []analyzer.Span {
	var out []analyzer.Span
	var cur *analyzer.Span

	for _, w := range u.tokenizer.Words(text) {
		if !capitalised(w.Text) || u.tokenizer.IsStopword(w.Text) {
			cur = nil
			continue
		}
		if cur != nil && onlySpaces(text[cur.End:w.Start]) {
			cur.End = w.End
			cur.Text = text[cur.Start:cur.End]
			continue
		}
		out = append(out, w)
		cur = &out[len(out)-1]
	}

	return out
}

func capitalised(word string) bool {
	r, _ := utf8.DecodeRuneInString(word)
	return unicode.IsUpper(r)
}

func onlySpaces(s string) bool {
	for _, r := range s {
		if r != ' ' {
			return false
		}
	}
	return s != ""
}
