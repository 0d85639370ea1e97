package analytics

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/xaenox/moodlog/internal/models"
)

// HistogramBins is the fixed bin count for the score histogram.
const HistogramBins = 20

// LabelCount is one slice of the categorical label distribution.
type LabelCount struct {
	Label string
	Count int
}

// LabelCounts returns the label distribution sorted by descending count,
// ties broken alphabetically for stable rendering.
func LabelCounts(logs []models.QueryLog) []LabelCount {
	counts := make(map[string]int)
	for _, log := range logs {
		counts[log.ModelLabel]++
	}

	out := make([]LabelCount, 0, len(counts))
	for label, count := range counts {
		out = append(out, LabelCount{Label: label, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// HistogramBin is one score bucket, with per-label counts for stacked
// rendering.
type HistogramBin struct {
	Low      float64
	High     float64
	Positive int
	Negative int
	Other    int
}

// Total returns the overall count in the bin.
func (b HistogramBin) Total() int {
	return b.Positive + b.Negative + b.Other
}

// Histogram buckets model scores into HistogramBins equal-width bins over
// [0,1], split by label. A score of exactly 1.0 lands in the last bin.
func Histogram(logs []models.QueryLog) []HistogramBin {
	bins := make([]HistogramBin, HistogramBins)
	width := 1.0 / float64(HistogramBins)
	for i := range bins {
		bins[i].Low = float64(i) * width
		bins[i].High = float64(i+1) * width
	}

	for _, log := range logs {
		idx := int(log.ModelScore / width)
		if idx < 0 {
			idx = 0
		}
		if idx >= HistogramBins {
			idx = HistogramBins - 1
		}
		switch log.ModelLabel {
		case models.LabelPositive:
			bins[idx].Positive++
		case models.LabelNegative:
			bins[idx].Negative++
		default:
			bins[idx].Other++
		}
	}
	return bins
}

// ScatterPoint is one (timestamp, score) observation for the trend chart.
type ScatterPoint struct {
	Timestamp time.Time
	Score     float64
	Label     string
}

// Scatter projects logs onto time-ordered scatter points, oldest first.
func Scatter(logs []models.QueryLog) []ScatterPoint {
	points := make([]ScatterPoint, 0, len(logs))
	for _, log := range logs {
		points = append(points, ScatterPoint{
			Timestamp: log.Timestamp,
			Score:     log.ModelScore,
			Label:     log.ModelLabel,
		})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})
	return points
}

// WriteCSV writes the filtered view as delimited text, one row per record.
func WriteCSV(w io.Writer, logs []models.QueryLog) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "input_text", "model_label", "model_score"}); err != nil {
		return err
	}
	for _, log := range logs {
		record := []string{
			log.Timestamp.UTC().Format(time.RFC3339),
			log.InputText,
			log.ModelLabel,
			fmt.Sprintf("%g", log.ModelScore),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
