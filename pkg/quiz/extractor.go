package quiz

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractorMarkers are the CSS selectors describing question markup.
type ExtractorMarkers struct {
	// Block matches question containers.
	Block string `json:"block" yaml:"block"`

	// Prompts are probed in order; the first non-empty text wins.
	Prompts []string `json:"prompts" yaml:"prompts"`

	// Options is a selector group; matches are kept in document order.
	Options string `json:"options" yaml:"options"`
}

// DefaultExtractorMarkers returns the stock question markup.
func DefaultExtractorMarkers() ExtractorMarkers {
	return ExtractorMarkers{
		Block:   ".question, [data-question]",
		Prompts: []string{".question-text", ".prompt"},
		Options: ".option, .answer, .choice",
	}
}

// Extractor reads questions out of a document snapshot.
type Extractor struct {
	markers    ExtractorMarkers
	classifier *Classifier
	logger     Logger
}

// NewExtractor creates an extractor. A nil classifier uses the default
// marker classes.
func NewExtractor(markers ExtractorMarkers, classifier *Classifier, logger Logger) *Extractor {
	if classifier == nil {
		classifier = MarkerClassifier(DefaultModalityMarkers())
	}
	return &Extractor{markers: markers, classifier: classifier, logger: logOrNop(logger)}
}

// BlockSelector returns the selector matching question containers.
func (e *Extractor) BlockSelector() string {
	return e.markers.Block
}

// Extract returns one Question per question block, in document order.
//
// Any failure aborts the whole extraction with a *QuizAnalysisError; partial
// results are never returned.
func (e *Extractor) Extract(ctx context.Context, doc Document) ([]Question, error) {
	questions, err := e.extract(ctx, doc)
	if err != nil {
		analysisErr := &QuizAnalysisError{URL: doc.URL(), Err: err}
		e.logger.Log(Entry{
			Category: CategoryExtractor,
			Message:  "question extraction failed",
			Level:    LevelError,
			Auxiliary: map[string]any{
				"url":   doc.URL(),
				"error": err.Error(),
			},
		})
		return nil, analysisErr
	}

	e.logger.Log(Entry{
		Category: CategoryExtractor,
		Message:  fmt.Sprintf("extracted %d questions", len(questions)),
		Auxiliary: map[string]any{
			"url":   doc.URL(),
			"count": len(questions),
		},
	})
	return questions, nil
}

// ExtractHTML extracts questions from raw HTML.
func (e *Extractor) ExtractHTML(html string) ([]Question, error) {
	root, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	var questions []Question
	seen := make(map[string]int)
	root.Find(e.markers.Block).Each(func(_ int, block *goquery.Selection) {
		text := e.promptText(block)
		q := Question{
			Modality: e.classifier.Classify(block),
			Text:     text,
			Options:  e.optionTexts(block),
		}
		if text != "" {
			q.Repeat = seen[text]
			seen[text]++
		}
		questions = append(questions, q)
	})
	return questions, nil
}

func (e *Extractor) extract(ctx context.Context, doc Document) ([]Question, error) {
	html, err := doc.Content(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read document content: %w", err)
	}
	return e.ExtractHTML(html)
}

func (e *Extractor) promptText(block *goquery.Selection) string {
	for _, sel := range e.markers.Prompts {
		if text := NormalizeSpace(block.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

func (e *Extractor) optionTexts(block *goquery.Selection) []string {
	options := []string{}
	if e.markers.Options == "" {
		return options
	}
	block.Find(e.markers.Options).Each(func(_ int, opt *goquery.Selection) {
		if text := NormalizeSpace(opt.Text()); text != "" {
			options = append(options, text)
		}
	})
	return options
}
