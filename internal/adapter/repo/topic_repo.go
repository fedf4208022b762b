package repo

import (
	"context"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/sqlinline"
)

// TopicRepositoryPG implements domain.TopicRepository backed by PostgreSQL.
type TopicRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewTopicRepository creates a new topic repository.
func NewTopicRepository(sql infra.SQLExecutor) *TopicRepositoryPG {
	return &TopicRepositoryPG{sql: sql}
}

// Create inserts a new topic record.
func (r *TopicRepositoryPG) Create(ctx context.Context, topic *domain.Topic) error {
	_, err := r.sql.Exec(ctx, sqlinline.QInsertTopic,
		topic.ID,
		topic.Title,
		topic.Transcript,
		topic.Language,
		topic.Skills,
	)
	return err
}

// GetByID fetches a topic by UUID.
func (r *TopicRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Topic, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectTopic, id)
	var t domain.Topic
	if err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Transcript,
		&t.Language,
		&t.Skills,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}
