package analyzer

import (
	"testing"
)

func TestTokenizer_Tokenize_WithFolding(t *testing.T) {
	tok := NewTokenizer(true)

	tokens := tok.Tokenize("Parliament passed the bills")
	expected := []string{"parliament", "pass", "bill"}
	if len(tokens) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, tokens)
	}
	for i := range expected {
		if tokens[i] != expected[i] {
			t.Errorf("token %d: expected %q, got %q", i, expected[i], tokens[i])
		}
	}
}

func TestTokenizer_Tokenize_WithoutFolding(t *testing.T) {
	tok := NewTokenizer(false)

	tokens := tok.Tokenize("running dogs are playing")
	if len(tokens) != 3 {
		t.Errorf("expected 3 tokens, got %d: %v", len(tokens), tokens)
	}
	if tokens[0] != "running" {
		t.Errorf("expected 'running' to remain unfolded, got %v", tokens)
	}
}

func TestTokenizer_StopwordRemoval(t *testing.T) {
	tok := NewTokenizer(false)

	for _, token := range tok.Tokenize("the quick brown fox") {
		if token == "the" {
			t.Errorf("stopword 'the' should be removed")
		}
	}
	if !tok.IsStopword("The") {
		t.Error("expected 'The' to be a stopword")
	}
}

func TestTokenizer_EmptyInput(t *testing.T) {
	tok := NewTokenizer(true)

	if tokens := tok.Tokenize(""); len(tokens) != 0 {
		t.Errorf("expected 0 tokens for empty input, got %d", len(tokens))
	}
	if spans := tok.Sentences("   "); len(spans) != 0 {
		t.Errorf("expected no sentences for blank input, got %v", spans)
	}
}

func TestFoldSuffix(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"passed", "pass"},
		{"passes", "pass"},
		{"approving", "approv"},
		{"laws", "law"},
		{"class", "class"},
		{"bus", "bus"},
		{"red", "red"},
	}

	for _, tt := range tests {
		if got := foldSuffix(tt.input); got != tt.expected {
			t.Errorf("foldSuffix(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestWords_Offsets(t *testing.T) {
	tok := NewTokenizer(false)
	text := "Ada Lovelace met Charles-Babbage in London."

	spans := tok.Words(text)
	if len(spans) != 7 {
		t.Fatalf("expected 7 words, got %d: %v", len(spans), spans)
	}
	for _, s := range spans {
		if text[s.Start:s.End] != s.Text {
			t.Errorf("span %v does not match source text %q", s, text[s.Start:s.End])
		}
	}
	if spans[3].Text != "Charles" || spans[4].Text != "Babbage" {
		t.Errorf("expected hyphen to split words, got %v", spans[3:5])
	}
}

func TestSentences(t *testing.T) {
	tok := NewTokenizer(false)
	text := "The bill passed. Did the senate agree?  Cats are pets"

	spans := tok.Sentences(text)
	expected := []string{"The bill passed.", "Did the senate agree?", "Cats are pets"}
	if len(spans) != len(expected) {
		t.Fatalf("expected %d sentences, got %d: %v", len(expected), len(spans), spans)
	}
	for i, s := range spans {
		if s.Text != expected[i] {
			t.Errorf("sentence %d: expected %q, got %q", i, expected[i], s.Text)
		}
		if text[s.Start:s.End] != s.Text {
			t.Errorf("sentence %d offsets do not match", i)
		}
	}
}
