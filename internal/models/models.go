package models

import "time"

// Sentiment labels emitted by the classifier.
const (
	LabelPositive = "POSITIVE"
	LabelNegative = "NEGATIVE"
)

// QueryLog is one persisted request/response pair. ID and Timestamp are
// assigned by the store on insert and never change afterwards.
type QueryLog struct {
	ID         int64     `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	InputText  string    `json:"input_text"`
	ModelLabel string    `json:"model_label"`
	ModelScore float64   `json:"model_score"`
}

// QueryRequest is the body of POST /query.
type QueryRequest struct {
	Text string `json:"text"`
}

// QueryResponse is the success body of POST /query.
type QueryResponse struct {
	InputText      string  `json:"input_text"`
	SentimentLabel string  `json:"sentiment_label"`
	SentimentScore float64 `json:"sentiment_score"`
}

// SentimentScore is a single classifier candidate. Classifiers return
// candidates ordered best-first; callers take the first.
type SentimentScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}
