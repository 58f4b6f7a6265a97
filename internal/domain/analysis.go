package domain

import "time"

// AnalysisRecord is the cached outcome of a legitimacy check for one
// token. Absence of a record means "never checked" and is treated as
// stale by the cache.
type AnalysisRecord struct {
	CheckedAt time.Time `json:"checkedAt"` // last completed check
	IsSafe    bool      `json:"isSafe"`    // check outcome

	// Resumable retry state for tokens too new to evaluate. Attempts
	// counts completed TooNew responses; NextRetryAt is zero unless a
	// retry is pending.
	Attempts    int       `json:"attempts,omitempty"`
	NextRetryAt time.Time `json:"nextRetryAt,omitempty"`
}
