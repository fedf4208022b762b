package domain

// FormatKey identifies one derived content format.
type FormatKey string

const (
	FormatText         FormatKey = "text"
	FormatAudio        FormatKey = "audio"
	FormatPresentation FormatKey = "presentation"
	FormatMindMap      FormatKey = "mind_map"
	FormatCode         FormatKey = "code"
	FormatAvatarVideo  FormatKey = "avatar_video"
)

// AllFormats returns the configured format keys in their canonical order.
func AllFormats() []FormatKey {
	return []FormatKey{
		FormatText,
		FormatAudio,
		FormatPresentation,
		FormatMindMap,
		FormatCode,
		FormatAvatarVideo,
	}
}

// ArtifactStatus enumerates the terminal outcomes of a format task.
type ArtifactStatus string

const (
	ArtifactSucceeded ArtifactStatus = "success"
	ArtifactFailed    ArtifactStatus = "failed"
	ArtifactSkipped   ArtifactStatus = "skipped"
)

// Machine-readable error codes attached to failed or skipped artifacts.
const (
	CodeLanguageInvalid       = "LANGUAGE_INVALID"
	CodeProviderError         = "PROVIDER_ERROR"
	CodePollTimeout           = "POLL_TIMEOUT"
	CodeResourceNotFound      = "RESOURCE_NOT_FOUND"
	CodeInternalError         = "INTERNAL_ERROR"
	ReasonNoAvailableResource = "no_available_resource"
)

// GenerationRequest carries everything a format task needs to produce its
// artifact. It is owned by the caller and read-only for the whole pipeline.
type GenerationRequest struct {
	TopicID   string
	RequestID string
	Title     string
	Prompt    string
	Language  string
	Skills    []string
}

// ArtifactResult is the uniform per-format outcome record. Exactly one is
// produced per task per request and it is immutable once returned.
type ArtifactResult struct {
	Format       FormatKey      `json:"format"`
	Status       ArtifactStatus `json:"status"`
	URL          string         `json:"url,omitempty"`
	Hash         string         `json:"hash,omitempty"`
	Fallback     bool           `json:"fallback,omitempty"`
	Provider     string         `json:"provider,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	ErrorCode    string         `json:"error_code,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
}

// GenerationResponse aggregates all six tagged results. The results map
// always contains one entry per configured format, regardless of per-task
// success or failure.
type GenerationResponse struct {
	TopicID  string                       `json:"topic_id"`
	Language string                       `json:"language"`
	Results  map[FormatKey]ArtifactResult `json:"results"`
}
