package model

import "time"

// QueryRunStatus represents the state of a stored query run.
type QueryRunStatus string

const (
	QueryRunRunning  QueryRunStatus = "running"
	QueryRunComplete QueryRunStatus = "complete"
	QueryRunDegraded QueryRunStatus = "degraded"
)

// QueryRun is one persisted pipeline execution: the raw query, its final
// result, and the explanation trace captured alongside it.
type QueryRun struct {
	ID        string                `json:"id"`
	Query     string                `json:"query"`
	Status    QueryRunStatus        `json:"status"`
	Result    *RecommendationResult `json:"result,omitempty"`
	Trace     *ExplanationTrace     `json:"trace,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}
