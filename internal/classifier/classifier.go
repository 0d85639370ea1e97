package classifier

import (
	"context"
	"strings"

	"github.com/xaenox/moodlog/internal/models"
)

// Classifier scores the sentiment of a piece of text. Implementations
// return candidates ordered best-first; callers use the first one.
type Classifier interface {
	Classify(ctx context.Context, text string) ([]models.SentimentScore, error)
}

// LexiconClassifier scores text by counting sentiment-bearing keywords.
// It is deterministic, needs no network, and serves as the fallback when
// no inference endpoint is configured.
type LexiconClassifier struct {
	positive []string
	negative []string
}

func NewLexiconClassifier() *LexiconClassifier {
	return &LexiconClassifier{
		positive: []string{
			"love", "great", "good", "excellent", "amazing", "wonderful",
			"fantastic", "happy", "best", "perfect", "awesome", "enjoy",
		},
		negative: []string{
			"hate", "bad", "terrible", "awful", "horrible", "worst",
			"poor", "disappointing", "broken", "sad", "angry", "useless",
		},
	}
}

func (c *LexiconClassifier) Classify(ctx context.Context, text string) ([]models.SentimentScore, error) {
	var pos, neg int
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:\"'()")
		for _, p := range c.positive {
			if word == p {
				pos++
				break
			}
		}
		for _, n := range c.negative {
			if word == n {
				neg++
				break
			}
		}
	}

	// Confidence grows with the margin between positive and negative hits;
	// text with no sentiment keywords scores an even 0.5.
	top, bottom := models.LabelPositive, models.LabelNegative
	if neg > pos {
		top, bottom = models.LabelNegative, models.LabelPositive
	}
	score := 0.5
	if pos+neg > 0 {
		diff := pos - neg
		if diff < 0 {
			diff = -diff
		}
		score = 0.5 + 0.5*float64(diff)/float64(pos+neg)
	}

	return []models.SentimentScore{
		{Label: top, Score: score},
		{Label: bottom, Score: 1 - score},
	}, nil
}
