package ports

import (
	"context"

	"malim/internal/domain"
)

// SnapshotStore persists the application snapshot as an opaque blob.
// Load returns (nil, nil) when nothing has been persisted yet.
type SnapshotStore interface {
	Load(ctx context.Context) (*domain.Snapshot, error)
	Save(ctx context.Context, snap domain.Snapshot) error
}

// ArtifactStore cleans up side-stored media for an article. Best effort;
// callers do not surface failures to the user.
type ArtifactStore interface {
	DeleteArticleAudio(articleID string) error
}

// Speech synthesizes spoken audio for a piece of text.
type Speech interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}
