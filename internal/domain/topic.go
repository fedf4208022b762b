package domain

import "time"

// Topic is the unit of instructional content artifacts are derived from.
type Topic struct {
	ID         string
	Title      string
	Transcript string
	Language   string
	Skills     []string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RequestStatus enumerates generation request lifecycle states.
type RequestStatus string

const (
	RequestStatusQueued    RequestStatus = "QUEUED"
	RequestStatusRunning   RequestStatus = "RUNNING"
	RequestStatusSucceeded RequestStatus = "SUCCEEDED"
	RequestStatusFailed    RequestStatus = "FAILED"
)

// Request is a queued content-generation run for a topic.
type Request struct {
	ID           string
	TopicID      string
	Status       RequestStatus
	Language     string
	ResultJSON   []byte
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Artifact is the stored record of one produced (or attempted) format output.
type Artifact struct {
	ID           string
	TopicID      string
	RequestID    string
	Format       FormatKey
	Status       ArtifactStatus
	URL          string
	Hash         string
	Fallback     bool
	Provider     string
	ErrorCode    string
	ErrorMessage string
	CreatedAt    time.Time
}
