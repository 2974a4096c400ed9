package domain

import "encoding/json"

// TaskKind names a task result variant.
type TaskKind string

const (
	TaskSentiment  TaskKind = "sentiment"
	TaskSpanAnswer TaskKind = "span_answer"
	TaskEntity     TaskKind = "entity"
)

// TaskResult is implemented only by the variants in this file.
type TaskResult interface {
	Kind() TaskKind
	isTaskResult()
}

// SentimentResult is a sentiment label with its aggregate score.
type SentimentResult struct {
	Label  string       `json:"label"`
	Score  float64      `json:"score"`
	Scores []LabelScore `json:"scores"`
}

// SpanAnswerResult is an extractive answer. Start and End are byte offsets
// into the context the answer was taken from.
type SpanAnswerResult struct {
	Answer string  `json:"answer"`
	Start  int     `json:"start"`
	End    int     `json:"end"`
	Score  float64 `json:"score"`
}

// Entity is a typed span found in a text.
type Entity struct {
	Text  string  `json:"text"`
	Type  string  `json:"type"`
	Start int     `json:"start"`
	End   int     `json:"end"`
	Score float64 `json:"score"`
}

// EntityResult lists the entities found in a text in order of appearance.
type EntityResult struct {
	Entities []Entity `json:"entities"`
}

func (SentimentResult) Kind() TaskKind  { return TaskSentiment }
func (SpanAnswerResult) Kind() TaskKind { return TaskSpanAnswer }
func (EntityResult) Kind() TaskKind     { return TaskEntity }

func (SentimentResult) isTaskResult()  {}
func (SpanAnswerResult) isTaskResult() {}
func (EntityResult) isTaskResult()     {}

// MarshalTaskResult encodes r together with its kind tag.
func MarshalTaskResult(r TaskResult) ([]byte, error) {
	return json.Marshal(struct {
		Kind   TaskKind   `json:"kind"`
		Result TaskResult `json:"result"`
	}{r.Kind(), r})
}
