package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/sceneforge/internal/services/control/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "control.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("Open(\"  \") error = nil, want error")
	}
}

func TestRecordAndListCommands(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Minute)

	records := []storage.CommandRecord{
		{ID: storage.NewRecordID(), ClientID: "c1", Command: "ping", Success: true, CreatedAt: base},
		{ID: storage.NewRecordID(), ClientID: "c1", Command: "create_object", Success: false, ErrorCode: "INVALID_PARAMS", CreatedAt: base.Add(time.Second)},
		{ID: storage.NewRecordID(), ClientID: "c2", Command: "render_scene", Success: true, Duration: 2 * time.Second, CreatedAt: base.Add(2 * time.Second)},
	}
	for _, rec := range records {
		if err := s.RecordCommand(ctx, rec); err != nil {
			t.Fatalf("RecordCommand(%s) error = %v", rec.Command, err)
		}
	}

	got, err := s.RecentCommands(ctx, 2)
	if err != nil {
		t.Fatalf("RecentCommands() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("RecentCommands() returned %d records, want 2", len(got))
	}
	if got[0].Command != "render_scene" {
		t.Errorf("newest command = %q, want render_scene", got[0].Command)
	}
	if got[0].Duration != 2*time.Second {
		t.Errorf("Duration = %v, want 2s", got[0].Duration)
	}
	if got[1].Command != "create_object" {
		t.Errorf("second command = %q, want create_object", got[1].Command)
	}
}

func TestRecordCommandValidation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.RecordCommand(ctx, storage.CommandRecord{Command: "ping"}); err == nil {
		t.Error("RecordCommand() without id: error = nil, want error")
	}
	if err := s.RecordCommand(ctx, storage.CommandRecord{ID: storage.NewRecordID()}); err == nil {
		t.Error("RecordCommand() without command: error = nil, want error")
	}
}

func TestStatsAggregation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now()

	failures := []string{"INVALID_PARAMS", "INVALID_PARAMS", "OBJECT_NOT_FOUND"}
	for i, code := range failures {
		rec := storage.CommandRecord{
			ID:        storage.NewRecordID(),
			ClientID:  "c1",
			Command:   "move_object",
			ErrorCode: code,
			CreatedAt: now.Add(time.Duration(i) * time.Second),
		}
		if err := s.RecordCommand(ctx, rec); err != nil {
			t.Fatalf("RecordCommand() error = %v", err)
		}
	}
	ok := storage.CommandRecord{ID: storage.NewRecordID(), ClientID: "c1", Command: "ping", Success: true, CreatedAt: now}
	if err := s.RecordCommand(ctx, ok); err != nil {
		t.Fatalf("RecordCommand() error = %v", err)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.TotalErrors != 3 {
		t.Errorf("TotalErrors = %d, want 3", stats.TotalErrors)
	}
	if len(stats.ByCode) != 2 {
		t.Fatalf("ByCode has %d entries, want 2", len(stats.ByCode))
	}
	if stats.ByCode[0].Code != "INVALID_PARAMS" || stats.ByCode[0].Count != 2 {
		t.Errorf("top stat = %+v, want INVALID_PARAMS count 2", stats.ByCode[0])
	}
	if stats.ByCode[0].Category != "VALIDATION" {
		t.Errorf("top stat category = %q, want VALIDATION", stats.ByCode[0].Category)
	}
	if stats.ByCode[1].Category != "ENGINE" {
		t.Errorf("second stat category = %q, want ENGINE", stats.ByCode[1].Category)
	}
}

func TestRecordRender(t *testing.T) {
	s := openTestStore(t)

	rec := storage.RenderRecord{
		ID:         storage.NewRecordID(),
		ClientID:   "c1",
		OutputPath: "/tmp/out.png",
		Width:      1920,
		Height:     1080,
		Engine:     "CYCLES",
		Seconds:    1.25,
		CreatedAt:  time.Now(),
	}
	if err := s.RecordRender(context.Background(), rec); err != nil {
		t.Fatalf("RecordRender() error = %v", err)
	}
}

func TestReopenKeepsRecords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "control.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	rec := storage.CommandRecord{ID: storage.NewRecordID(), ClientID: "c1", Command: "ping", Success: true, CreatedAt: time.Now()}
	if err := s.RecordCommand(context.Background(), rec); err != nil {
		t.Fatalf("RecordCommand() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.RecentCommands(context.Background(), 10)
	if err != nil {
		t.Fatalf("RecentCommands() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != rec.ID {
		t.Errorf("RecentCommands() after reopen = %+v, want the original record", got)
	}
}
