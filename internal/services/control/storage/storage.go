package storage

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"

	domainerrors "github.com/louisbranch/sceneforge/internal/platform/errors"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// CommandRecord stores one dispatched command and its outcome.
type CommandRecord struct {
	ID        string
	ClientID  string
	Command   string
	Success   bool
	ErrorCode string
	Duration  time.Duration
	CreatedAt time.Time
}

// RenderRecord stores one completed render.
type RenderRecord struct {
	ID         string
	ClientID   string
	OutputPath string
	Width      int
	Height     int
	Engine     string
	Seconds    float64
	CreatedAt  time.Time
}

// ErrorStat is an aggregated failure count for one error code.
type ErrorStat struct {
	Code     string    `json:"code"`
	Category string    `json:"category"`
	Count    int       `json:"count"`
	LastSeen time.Time `json:"last_seen"`
}

// ErrorStats summarizes all recorded failures.
type ErrorStats struct {
	TotalErrors int         `json:"total_errors"`
	ByCode      []ErrorStat `json:"by_code"`
}

// Store persists command audit records and render history.
type Store interface {
	// RecordCommand appends one command outcome to the audit trail.
	RecordCommand(ctx context.Context, record CommandRecord) error

	// RecordRender appends one completed render to the history.
	RecordRender(ctx context.Context, record RenderRecord) error

	// RecentCommands returns up to limit most recent command records,
	// newest first.
	RecentCommands(ctx context.Context, limit int) ([]CommandRecord, error)

	// Stats aggregates recorded failures by error code.
	Stats(ctx context.Context) (ErrorStats, error)

	// Close releases store resources.
	Close() error
}

// NewRecordID returns a lexicographically sortable record identifier.
func NewRecordID() string {
	return ulid.Make().String()
}

// CategoryFor resolves the category label for a stored error code.
func CategoryFor(code string) string {
	return string(domainerrors.Code(code).Category())
}
