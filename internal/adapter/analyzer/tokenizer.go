package analyzer

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Span is a piece of text with its byte offsets in the source.
type Span struct {
	Text  string
	Start int
	End   int
}

// Tokenizer splits text into normalised terms for the hashing embedder and
// into offset-carrying spans for the extractive tasks.
type Tokenizer struct {
	stopwords map[string]struct{}
	fold      bool
	sentences *regexp.Regexp
}

// NewTokenizer creates a new Tokenizer. With folding enabled, common English
// inflections are stripped so "passed" and "passes" share a term.
func NewTokenizer(fold bool) *Tokenizer {
	return &Tokenizer{
		stopwords: defaultStopwords(),
		fold:      fold,
		sentences: regexp.MustCompile(`[^.!?\n]+(?:[.!?]+|\n|$)`),
	}
}

// Tokenize returns lowercased terms without stopwords and one-letter words.
func (t *Tokenizer) Tokenize(text string) []string {
	words := t.Words(text)
	tokens := make([]string, 0, len(words))

	for _, w := range words {
		word := strings.ToLower(w.Text)
		if utf8.RuneCountInString(word) < 2 {
			continue
		}
		if _, isStop := t.stopwords[word]; isStop {
			continue
		}
		if t.fold {
			word = foldSuffix(word)
		}
		tokens = append(tokens, word)
	}

	return tokens
}

// IsStopword reports whether word is ignored by Tokenize.
func (t *Tokenizer) IsStopword(word string) bool {
	_, ok := t.stopwords[strings.ToLower(word)]
	return ok
}

// Words splits text on anything that is not a letter, digit or underscore.
func (t *Tokenizer) Words(text string) []Span {
	var spans []Span
	start := -1

	for i, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || (r == '\'' && start >= 0) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			spans = append(spans, Span{Text: text[start:i], Start: start, End: i})
			start = -1
		}
	}
	if start >= 0 {
		spans = append(spans, Span{Text: text[start:], Start: start, End: len(text)})
	}

	return spans
}

// Sentences splits text into trimmed sentences with their offsets.
func (t *Tokenizer) Sentences(text string) []Span {
	var spans []Span
	for _, loc := range t.sentences.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		for start < end && isSpace(text[start]) {
			start++
		}
		for end > start && isSpace(text[end-1]) {
			end--
		}
		if start == end {
			continue
		}
		spans = append(spans, Span{Text: text[start:end], Start: start, End: end})
	}
	return spans
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// foldSuffix strips a handful of regular English suffixes.
func foldSuffix(word string) string {
	for _, suffix := range []string{"ing", "ed", "es", "s"} {
		if strings.HasSuffix(word, suffix) && len(word)-len(suffix) >= 3 {
			stem := word[:len(word)-len(suffix)]
			if suffix == "s" && strings.HasSuffix(stem, "s") {
				return word
			}
			return stem
		}
	}
	return word
}

// defaultStopwords returns a set of common English stopwords.
func defaultStopwords() map[string]struct{} {
	stops := []string{
		"a", "an", "and", "are", "as", "at", "be", "by", "for",
		"from", "has", "he", "in", "is", "it", "its", "of", "on",
		"that", "the", "to", "was", "were", "will", "with", "this",
		"have", "had", "but", "not", "you", "your", "we", "our",
		"they", "their", "she", "her", "his", "if", "or", "so",
		"no", "can", "do", "does", "did", "been", "being", "would",
		"could", "should", "may", "might", "must", "shall", "which",
		"who", "whom", "what", "when", "where", "why", "how", "all",
		"each", "every", "both", "few", "more", "most", "other",
		"some", "such", "than", "too", "very", "just", "also",
	}
	m := make(map[string]struct{}, len(stops))
	for _, s := range stops {
		m[s] = struct{}{}
	}
	return m
}
