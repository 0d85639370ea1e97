package classifier

import (
	"context"
	"testing"

	"github.com/xaenox/moodlog/internal/models"
)

func TestLexiconClassifier_Classify(t *testing.T) {
	clf := NewLexiconClassifier()

	tests := []struct {
		name      string
		text      string
		wantLabel string
	}{
		{"positive", "I love this product, it is great!", models.LabelPositive},
		{"negative", "This is terrible and the support was awful.", models.LabelNegative},
		{"mixed leaning positive", "The screen is great, great colors, but the battery is bad.", models.LabelPositive},
		{"neutral defaults to positive", "The package arrived on Tuesday.", models.LabelPositive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidates, err := clf.Classify(context.Background(), tt.text)
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if len(candidates) != 2 {
				t.Fatalf("Classify() returned %d candidates, want 2", len(candidates))
			}
			if candidates[0].Label != tt.wantLabel {
				t.Errorf("top label = %q, want %q", candidates[0].Label, tt.wantLabel)
			}
			if candidates[0].Score < candidates[1].Score {
				t.Errorf("candidates not ordered best-first: %v", candidates)
			}
			if candidates[0].Score < 0 || candidates[0].Score > 1 {
				t.Errorf("score out of range: %v", candidates[0].Score)
			}
		})
	}
}

func TestLexiconClassifier_ScoreMargin(t *testing.T) {
	clf := NewLexiconClassifier()

	// All keywords agree: full confidence
	candidates, err := clf.Classify(context.Background(), "love love love")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if candidates[0].Score != 1.0 {
		t.Errorf("unanimous keywords score = %v, want 1.0", candidates[0].Score)
	}

	// Evenly split: no confidence beyond the baseline
	candidates, err = clf.Classify(context.Background(), "love hate")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if candidates[0].Score != 0.5 {
		t.Errorf("split keywords score = %v, want 0.5", candidates[0].Score)
	}

	// No keywords at all: 0.5 as well
	candidates, err = clf.Classify(context.Background(), "")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if candidates[0].Score != 0.5 {
		t.Errorf("empty text score = %v, want 0.5", candidates[0].Score)
	}
}

func TestLexiconClassifier_Punctuation(t *testing.T) {
	clf := NewLexiconClassifier()

	candidates, err := clf.Classify(context.Background(), "Awful!!! Horrible. \"Useless\"...")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if candidates[0].Label != models.LabelNegative {
		t.Errorf("top label = %q, want %q", candidates[0].Label, models.LabelNegative)
	}
	if candidates[0].Score != 1.0 {
		t.Errorf("score = %v, want 1.0", candidates[0].Score)
	}
}
