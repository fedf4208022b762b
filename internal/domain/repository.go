package domain

import "context"

// TopicRepository defines persistence for topics.
type TopicRepository interface {
	Create(ctx context.Context, topic *Topic) error
	GetByID(ctx context.Context, id string) (*Topic, error)
}

// RequestRepository defines persistence for generation requests.
type RequestRepository interface {
	Enqueue(ctx context.Context, req *Request) error
	GetByID(ctx context.Context, id string) (*Request, error)
	UpdateStatus(ctx context.Context, id string, status RequestStatus, errMsg *string, resultJSON []byte) error
	// ClaimNext atomically picks the oldest queued request and marks it
	// RUNNING. It returns ErrNotFound when the queue is empty.
	ClaimNext(ctx context.Context) (*Request, error)
}

// ArtifactRepository handles persistence for produced artifacts.
type ArtifactRepository interface {
	Insert(ctx context.Context, artifact *Artifact) error
	ListByTopic(ctx context.Context, topicID string) ([]Artifact, error)
}
