package domain

import "fmt"

// AnchorSet maps labels to example embeddings. Labels keep the order they were
// declared in. An AnchorSet is immutable once built and safe for concurrent reads.
type AnchorSet struct {
	labels    []string
	examples  map[string][]Embedding
	dimension int
}

// Anchor is one label with its example embeddings.
type Anchor struct {
	Label    string
	Examples []Embedding
}

// NewAnchorSet validates anchors and copies them into a new set.
func NewAnchorSet(anchors []Anchor) (*AnchorSet, error) {
	if len(anchors) == 0 {
		return nil, &EmptyAnchorSetError{}
	}

	set := &AnchorSet{
		labels:   make([]string, 0, len(anchors)),
		examples: make(map[string][]Embedding, len(anchors)),
	}
	for _, a := range anchors {
		if err := set.add(a); err != nil {
			return nil, err
		}
	}
	return set, nil
}

func (s *AnchorSet) add(a Anchor) error {
	if a.Label == "" {
		return &ConfigurationError{Reason: "label must not be empty"}
	}
	if _, dup := s.examples[a.Label]; dup {
		return &ConfigurationError{Label: a.Label, Reason: "duplicate label"}
	}
	if len(a.Examples) == 0 {
		return &ConfigurationError{Label: a.Label, Reason: "label has no examples"}
	}

	copied := make([]Embedding, len(a.Examples))
	for i, ex := range a.Examples {
		if len(ex) == 0 {
			return &ConfigurationError{Label: a.Label, Reason: fmt.Sprintf("example %d is empty", i)}
		}
		if s.dimension == 0 {
			s.dimension = len(ex)
		} else if len(ex) != s.dimension {
			return &DimensionMismatchError{
				Item: fmt.Sprintf("anchor %q example %d", a.Label, i),
				Want: s.dimension,
				Got:  len(ex),
			}
		}
		copied[i] = ex.Clone()
	}

	s.labels = append(s.labels, a.Label)
	s.examples[a.Label] = copied
	return nil
}

// With returns a new set with examples appended to label, creating the label
// at the end of the declared order when it is new. The receiver is unchanged.
func (s *AnchorSet) With(label string, examples ...Embedding) (*AnchorSet, error) {
	anchors := s.Anchors()
	found := false
	for i := range anchors {
		if anchors[i].Label == label {
			anchors[i].Examples = append(anchors[i].Examples, examples...)
			found = true
			break
		}
	}
	if !found {
		anchors = append(anchors, Anchor{Label: label, Examples: examples})
	}
	return NewAnchorSet(anchors)
}

// Len returns the number of labels. A nil set has none.
func (s *AnchorSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.labels)
}

// Labels returns the labels in declared order.
func (s *AnchorSet) Labels() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.labels))
	copy(out, s.labels)
	return out
}

// Examples returns the example embeddings of label. The returned slice must
// not be modified.
func (s *AnchorSet) Examples(label string) []Embedding {
	if s == nil {
		return nil
	}
	return s.examples[label]
}

// Dimension returns the shared dimension of every example.
func (s *AnchorSet) Dimension() int {
	if s == nil {
		return 0
	}
	return s.dimension
}

// Anchors returns a copy of the set's contents in declared order.
func (s *AnchorSet) Anchors() []Anchor {
	if s == nil {
		return nil
	}
	out := make([]Anchor, len(s.labels))
	for i, l := range s.labels {
		ex := s.examples[l]
		cp := make([]Embedding, len(ex))
		for j := range ex {
			cp[j] = ex[j].Clone()
		}
		out[i] = Anchor{Label: l, Examples: cp}
	}
	return out
}

// ValidateDefinitions applies the construction checks of NewAnchorSet to text
// definitions so configuration errors surface before any embedding call.
func ValidateDefinitions(defs []LabeledTexts) error {
	if len(defs) == 0 {
		return &EmptyAnchorSetError{}
	}
	seen := make(map[string]struct{}, len(defs))
	for _, d := range defs {
		if d.Label == "" {
			return &ConfigurationError{Reason: "label must not be empty"}
		}
		if _, dup := seen[d.Label]; dup {
			return &ConfigurationError{Label: d.Label, Reason: "duplicate label"}
		}
		seen[d.Label] = struct{}{}
		if len(d.Texts) == 0 {
			return &ConfigurationError{Label: d.Label, Reason: "label has no examples"}
		}
	}
	return nil
}
