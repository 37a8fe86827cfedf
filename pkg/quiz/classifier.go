package quiz

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

// Predicate tests a question block.
type Predicate func(block *goquery.Selection) bool

// Rule pairs a predicate with the modality it assigns.
type Rule struct {
	Modality  Modality
	Predicate Predicate
}

// Classifier assigns a modality to a question block by evaluating its rules in
// order. The first matching rule wins; blocks matching no rule get Default.
type Classifier struct {
	Rules   []Rule
	Default Modality
}

// Classify returns the modality of block.
func (c *Classifier) Classify(block *goquery.Selection) Modality {
	for _, r := range c.Rules {
		if r.Predicate != nil && r.Predicate(block) {
			return r.Modality
		}
	}
	if c.Default == "" {
		return ModalityWritten
	}
	return c.Default
}

// HasAnyClass returns a predicate matching blocks carrying any of classes.
func HasAnyClass(classes ...string) Predicate {
	return func(block *goquery.Selection) bool {
		for _, c := range classes {
			if block.HasClass(c) {
				return true
			}
		}
		return false
	}
}

// ModalityMarkers lists the marker classes of each modality.
type ModalityMarkers struct {
	MultipleChoice []string `json:"multiple_choice" yaml:"multiple_choice"`
	TrueFalse      []string `json:"true_false" yaml:"true_false"`
	Matching       []string `json:"matching" yaml:"matching"`
}

// DefaultModalityMarkers returns the marker classes recognised out of the box.
func DefaultModalityMarkers() ModalityMarkers {
	return ModalityMarkers{
		MultipleChoice: []string{"multiple-choice", "multiple_choice"},
		TrueFalse:      []string{"true-false", "true_false"},
		Matching:       []string{"matching"},
	}
}

// DefaultModalityOrder is the stock priority of the marked modalities.
var DefaultModalityOrder = []Modality{ModalityMultipleChoice, ModalityTrueFalse, ModalityMatching}

// MarkerClassifier builds a classifier testing the marker classes in
// DefaultModalityOrder, defaulting to written.
func MarkerClassifier(m ModalityMarkers) *Classifier {
	c, _ := OrderedMarkerClassifier(m, DefaultModalityOrder)
	return c
}

// OrderedMarkerClassifier builds a classifier testing the marker classes in
// order. A block carrying markers of several modalities resolves to the one
// listed first.
func OrderedMarkerClassifier(m ModalityMarkers, order []Modality) (*Classifier, error) {
	if err := ValidateModalityOrder(order); err != nil {
		return nil, err
	}
	classes := m.byModality()
	rules := make([]Rule, 0, len(order))
	for _, mod := range order {
		rules = append(rules, Rule{Modality: mod, Predicate: HasAnyClass(classes[mod]...)})
	}
	return &Classifier{Rules: rules, Default: ModalityWritten}, nil
}

// ValidateModalityOrder checks that order lists each marked modality exactly
// once.
func ValidateModalityOrder(order []Modality) error {
	marked := ModalityMarkers{}.byModality()
	seen := make(map[Modality]bool, len(order))
	for _, m := range order {
		if _, ok := marked[m]; !ok {
			return fmt.Errorf("modality order: %q has no marker classes", m)
		}
		if seen[m] {
			return fmt.Errorf("modality order: %q listed twice", m)
		}
		seen[m] = true
	}
	if len(seen) != len(marked) {
		return fmt.Errorf("modality order must list %v", DefaultModalityOrder)
	}
	return nil
}

func (m ModalityMarkers) byModality() map[Modality][]string {
	return map[Modality][]string{
		ModalityMultipleChoice: m.MultipleChoice,
		ModalityTrueFalse:      m.TrueFalse,
		ModalityMatching:       m.Matching,
	}
}
