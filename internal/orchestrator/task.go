package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"server/internal/domain"
	"server/internal/lang"
)

// Task is one independent content-generation unit for a single output
// format. Run never returns an error; every outcome is a tagged result.
type Task interface {
	Format() domain.FormatKey
	Run(ctx context.Context, req domain.GenerationRequest) domain.ArtifactResult
}

// gate resolves the request language. Every task calls it before issuing any
// provider call; an unresolved language fails the task without touching the
// network.
func gate(format domain.FormatKey, req domain.GenerationRequest) (lang.Profile, *domain.ArtifactResult) {
	profile := lang.Resolve(req.Language)
	if !profile.Valid {
		res := failed(format, domain.CodeLanguageInvalid, profile.Reason)
		return profile, &res
	}
	return profile, nil
}

func failed(format domain.FormatKey, code, message string) domain.ArtifactResult {
	return domain.ArtifactResult{
		Format:       format,
		Status:       domain.ArtifactFailed,
		ErrorCode:    code,
		ErrorMessage: message,
	}
}

func skipped(format domain.FormatKey, reason, message string) domain.ArtifactResult {
	return domain.ArtifactResult{
		Format:       format,
		Status:       domain.ArtifactSkipped,
		ErrorCode:    reason,
		ErrorMessage: message,
	}
}

func providerFailed(format domain.FormatKey, err error) domain.ArtifactResult {
	return failed(format, domain.CodeProviderError, err.Error())
}

// artifactKey builds the storage key for one produced artifact.
func artifactKey(req domain.GenerationRequest, name string) string {
	topic := strings.TrimSpace(req.TopicID)
	requestID := strings.TrimSpace(req.RequestID)
	if requestID == "" {
		requestID = "adhoc"
	}
	return fmt.Sprintf("generated/%s/%s/%s", topic, requestID, name)
}
