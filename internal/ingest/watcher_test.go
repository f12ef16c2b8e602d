package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatch_RequiresRoot(t *testing.T) {
	_, _, err := Watch(context.Background(), WatchConfig{})
	if err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestWatch_InitialScanEmitsExistingReports(t *testing.T) {
	dir := t.TempDir()
	reportPath := filepath.Join(dir, "shift.pdf")
	if err := os.WriteFile(reportPath, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatalf("failed to create report: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to create text file: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	paths, _, err := Watch(ctx, WatchConfig{Root: dir, InitialScan: true})
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	select {
	case got := <-paths:
		if got != reportPath {
			t.Errorf("emitted %s, want %s", got, reportPath)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("initial scan did not emit the existing report")
	}
}

func TestWatch_EmitsNewReport(t *testing.T) {
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	paths, _, err := Watch(ctx, WatchConfig{Root: dir, Debounce: 10 * time.Millisecond})
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	reportPath := filepath.Join(dir, "new-shift.pdf")
	if err := os.WriteFile(reportPath, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatalf("failed to create report: %v", err)
	}

	select {
	case got := <-paths:
		if got != reportPath {
			t.Errorf("emitted %s, want %s", got, reportPath)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not emit the new report")
	}
}

func TestWatch_IgnoresNonPDF(t *testing.T) {
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	paths, _, err := Watch(ctx, WatchConfig{Root: dir, Debounce: 10 * time.Millisecond})
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to create text file: %v", err)
	}

	select {
	case got := <-paths:
		t.Errorf("unexpected emission for non-PDF: %s", got)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatch_BurstThenShutdown(t *testing.T) {
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	paths, _, err := Watch(ctx, WatchConfig{Root: dir, Debounce: time.Millisecond})
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	go func() {
		for i := 0; i < 200; i++ {
			name := filepath.Join(dir, fmt.Sprintf("shift-%03d.pdf", i))
			_ = os.WriteFile(name, []byte("%PDF-1.4"), 0o644)
		}
	}()

	// Wait for flushing to start, then cancel while events are still
	// arriving so shutdown overlaps in-flight debounce flushes.
	select {
	case _, ok := <-paths:
		if !ok {
			t.Fatal("channel closed before any emission")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no emissions from burst")
	}

	cancel()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-paths:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel did not close after cancellation")
		}
	}
}

func TestWatch_StopsOnCancel(t *testing.T) {
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	paths, _, err := Watch(ctx, WatchConfig{Root: dir})
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	cancel()

	select {
	case _, open := <-paths:
		if open {
			t.Error("channel should close after cancellation")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel did not close after cancellation")
	}
}
