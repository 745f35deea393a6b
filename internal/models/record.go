package models

import (
	"fmt"
	"strings"
)

// Sentiment is the classification label attached to a headline.
type Sentiment string

const (
	SentimentPositive Sentiment = "POSITIVE"
	SentimentNegative Sentiment = "NEGATIVE"
	SentimentNeutral  Sentiment = "NEUTRAL"
	SentimentMixed    Sentiment = "MIXED"
)

// Sentiments lists every recognized label, in display order.
var Sentiments = []Sentiment{
	SentimentPositive,
	SentimentNegative,
	SentimentNeutral,
	SentimentMixed,
}

// ParseSentiment maps a raw string onto one of the recognized labels.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseSentiment(raw string) (Sentiment, error) {
	switch Sentiment(strings.ToUpper(strings.TrimSpace(raw))) {
	case SentimentPositive:
		return SentimentPositive, nil
	case SentimentNegative:
		return SentimentNegative, nil
	case SentimentNeutral:
		return SentimentNeutral, nil
	case SentimentMixed:
		return SentimentMixed, nil
	}
	return "", fmt.Errorf("unrecognized sentiment %q", raw)
}

// NewsRecord is one classified headline as stored in Elasticsearch.
// Timestamp is an RFC 3339 string: it is part of the storage key, so the
// stored value and the sort value must be byte-identical.
type NewsRecord struct {
	Sentiment Sentiment `json:"sentiment"`
	Timestamp string    `json:"timestamp"`
	Title     string    `json:"title"`
}

// Key returns the document ID for the record. Two records with the same
// sentiment and timestamp share a key, so the later write overwrites the
// earlier one.
func (r NewsRecord) Key() string {
	return string(r.Sentiment) + "#" + r.Timestamp
}
