package sqlite

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"malim/internal/domain"
)

func newTestRepo(t *testing.T) *SnapshotRepo {
	t.Helper()
	db, err := Init(filepath.Join(t.TempDir(), "malim.db"))
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewSnapshotRepo(db)
}

func TestSnapshotRepo_LoadEmpty(t *testing.T) {
	repo := newTestRepo(t)
	got, err := repo.Load(context.Background())
	if err != nil || got != nil {
		t.Errorf("load = %+v, %v; want nil, nil", got, err)
	}
}

func TestSnapshotRepo_RoundTripAndOverwrite(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := domain.Snapshot{
		Articles: []domain.Article{{ID: "a", Title: "one", Status: domain.StatusParsing}},
		Settings: &domain.Settings{APIKey: "k"},
	}
	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}

	second := first
	second.Articles = []domain.Article{{ID: "a", Title: "two", Status: domain.StatusDone, ParsingProgress: 100}}
	if err := repo.Save(ctx, second); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got == nil || !reflect.DeepEqual(got.Articles, second.Articles) {
		t.Errorf("load after overwrite = %+v, want latest articles", got)
	}
}
