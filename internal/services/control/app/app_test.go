package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestRunStopsOnContextCancel(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"memory store", Options{}},
		{"sqlite store", Options{DBPath: filepath.Join(t.TempDir(), "audit.db")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Addr = "127.0.0.1:0"
			tt.opts.RenderDir = t.TempDir()

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- Run(ctx, tt.opts) }()

			time.Sleep(100 * time.Millisecond)
			cancel()

			select {
			case err := <-done:
				if err != nil {
					t.Fatalf("Run() error = %v", err)
				}
			case <-time.After(5 * time.Second):
				t.Fatal("Run() did not stop after cancel")
			}
		})
	}
}
