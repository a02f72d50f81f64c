package storage

import (
	"context"

	"github.com/garyellow/agri-advisor-go/internal/intent"
)

// KnowledgeRepository reads and writes curated advice rows.
type KnowledgeRepository interface {
	KnowledgeRows(ctx context.Context) ([]KnowledgeRow, error)
	SaveKnowledgeRows(ctx context.Context, rows []KnowledgeRow) error
	CountKnowledgeRows(ctx context.Context) (int, error)
}

// ExampleRepository reads and writes intent example phrases.
type ExampleRepository interface {
	IntentExamples(ctx context.Context) (map[intent.Label][]string, error)
	SaveIntentExamples(ctx context.Context, examples []IntentExample) error
}

// HealthRepository defines the interface for health check operations.
type HealthRepository interface {
	Ping(ctx context.Context) error
}

// Repository is the aggregate interface implemented by DB.
type Repository interface {
	KnowledgeRepository
	ExampleRepository
	HealthRepository
	Close() error
}

var (
	_ KnowledgeRepository = (*DB)(nil)
	_ ExampleRepository   = (*DB)(nil)
	_ HealthRepository    = (*DB)(nil)
	_ Repository          = (*DB)(nil)
)
