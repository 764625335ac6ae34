// Package memory provides an in-memory Store used when no storage path is
// configured. Records are lost on restart; error statistics still work for
// the lifetime of the process.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/louisbranch/sceneforge/internal/services/control/storage"
)

// maxRecords bounds the in-memory audit trail.
const maxRecords = 1000

// Store keeps audit records in process memory.
type Store struct {
	mu       sync.Mutex
	commands []storage.CommandRecord
	renders  []storage.RenderRecord
}

// New builds an empty in-memory store.
func New() *Store {
	return &Store{}
}

// RecordCommand implements storage.Store.
func (s *Store) RecordCommand(ctx context.Context, record storage.CommandRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.commands = append(s.commands, record)
	if len(s.commands) > maxRecords {
		s.commands = s.commands[len(s.commands)-maxRecords:]
	}
	return nil
}

// RecordRender implements storage.Store.
func (s *Store) RecordRender(ctx context.Context, record storage.RenderRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.renders = append(s.renders, record)
	if len(s.renders) > maxRecords {
		s.renders = s.renders[len(s.renders)-maxRecords:]
	}
	return nil
}

// RecentCommands implements storage.Store.
func (s *Store) RecentCommands(ctx context.Context, limit int) ([]storage.CommandRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 || limit > len(s.commands) {
		limit = len(s.commands)
	}
	out := make([]storage.CommandRecord, 0, limit)
	for i := len(s.commands) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.commands[i])
	}
	return out, nil
}

// Stats implements storage.Store.
func (s *Store) Stats(ctx context.Context) (storage.ErrorStats, error) {
	if err := ctx.Err(); err != nil {
		return storage.ErrorStats{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	byCode := map[string]*storage.ErrorStat{}
	var stats storage.ErrorStats
	for _, rec := range s.commands {
		if rec.Success {
			continue
		}
		stats.TotalErrors++
		stat, ok := byCode[rec.ErrorCode]
		if !ok {
			stat = &storage.ErrorStat{
				Code:     rec.ErrorCode,
				Category: storage.CategoryFor(rec.ErrorCode),
			}
			byCode[rec.ErrorCode] = stat
		}
		stat.Count++
		if rec.CreatedAt.After(stat.LastSeen) {
			stat.LastSeen = rec.CreatedAt
		}
	}

	for _, stat := range byCode {
		stats.ByCode = append(stats.ByCode, *stat)
	}
	sort.Slice(stats.ByCode, func(i, j int) bool {
		if stats.ByCode[i].Count != stats.ByCode[j].Count {
			return stats.ByCode[i].Count > stats.ByCode[j].Count
		}
		return stats.ByCode[i].Code < stats.ByCode[j].Code
	})
	return stats, nil
}

// Close implements storage.Store.
func (s *Store) Close() error { return nil }
