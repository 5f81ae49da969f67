package core

import (
	"time"
)

// Verdict is the user-facing outcome of a prediction
type Verdict int

const (
	// NotSpam is any classifier label other than the spam label
	NotSpam Verdict = iota
	// Spam is the classifier's spam label
	Spam
)

// String returns the wire name of the verdict
func (v Verdict) String() string {
	if v == Spam {
		return "spam"
	}
	return "not_spam"
}

// FeatureVector is a sparse row of a fixed-dimension feature matrix.
// Indices are strictly increasing and lower than Dim.
type FeatureVector struct {
	Dim     int
	Indices []int
	Values  []float64
}

// Prediction represents the result of classifying one message
type Prediction struct {
	Verdict      Verdict
	Label        int
	Normalized   string
	Scores       map[int]float64
	ModelUsed    string
	AnalyzedAt   time.Time
	ProcessingID string
	FromCache    bool
}

// IsSpam reports whether the prediction is spam
func (p *Prediction) IsSpam() bool {
	return p.Verdict == Spam
}

// CacheEntry is a stored prediction keyed by normalized text
type CacheEntry struct {
	Key       string
	Verdict   Verdict
	Label     int
	ModelUsed string
	LastSeen  time.Time
	ExpiresAt time.Time
}
