package repo

import (
	"context"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/sqlinline"
)

// ArtifactRepositoryPG implements domain.ArtifactRepository backed by PostgreSQL.
type ArtifactRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewArtifactRepository creates a new artifact repository.
func NewArtifactRepository(sql infra.SQLExecutor) *ArtifactRepositoryPG {
	return &ArtifactRepositoryPG{sql: sql}
}

// Insert records one produced (or attempted) artifact.
func (r *ArtifactRepositoryPG) Insert(ctx context.Context, artifact *domain.Artifact) error {
	_, err := r.sql.Exec(ctx, sqlinline.QInsertArtifact,
		artifact.ID,
		artifact.TopicID,
		artifact.RequestID,
		artifact.Format,
		artifact.Status,
		artifact.URL,
		artifact.Hash,
		artifact.Fallback,
		artifact.Provider,
		nullableString(artifact.ErrorCode),
		nullableString(artifact.ErrorMessage),
	)
	return err
}

// ListByTopic returns the artifacts recorded for a topic, newest first.
func (r *ArtifactRepositoryPG) ListByTopic(ctx context.Context, topicID string) ([]domain.Artifact, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QSelectArtifactsByTopic, topicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var artifacts []domain.Artifact
	for rows.Next() {
		var a domain.Artifact
		if err := rows.Scan(
			&a.ID,
			&a.TopicID,
			&a.RequestID,
			&a.Format,
			&a.Status,
			&a.URL,
			&a.Hash,
			&a.Fallback,
			&a.Provider,
			&a.ErrorCode,
			&a.ErrorMessage,
			&a.CreatedAt,
		); err != nil {
			return nil, err
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, rows.Err()
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
