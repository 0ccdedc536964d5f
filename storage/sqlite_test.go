package storage

import (
	"path/filepath"
	"testing"
	"time"

	"seolens/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCommandQueue_RoundTrip(t *testing.T) {
	store := newTestStore(t)

	err := store.EnqueueCommand(models.CmdScanDomain, &models.CommandParams{
		DomainID: "6f1c9f0a-0000-0000-0000-000000000001",
		MaxPages: 25,
	})
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	if err := store.EnqueueCommand(models.CmdCheckUptime, nil); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	cmds, err := store.GetPendingCommands()
	if err != nil {
		t.Fatalf("get pending failed: %v", err)
	}
	if len(cmds) != 2 {
		t.Fatalf("expected 2 pending commands, got %d", len(cmds))
	}
	if cmds[0].Command != models.CmdScanDomain {
		t.Fatalf("expected scan_domain first, got %s", cmds[0].Command)
	}
	if len(cmds[0].Params) == 0 {
		t.Fatalf("expected params on scan command")
	}
	if len(cmds[1].Params) != 0 {
		t.Fatalf("expected no params on uptime command, got %s", cmds[1].Params)
	}

	if err := store.MarkCommandProcessed(cmds[0].ID); err != nil {
		t.Fatalf("mark processed failed: %v", err)
	}

	cmds, err = store.GetPendingCommands()
	if err != nil {
		t.Fatalf("get pending failed: %v", err)
	}
	if len(cmds) != 1 || cmds[0].Command != models.CmdCheckUptime {
		t.Fatalf("expected only the uptime command pending, got %v", cmds)
	}
}

func TestScanLogs(t *testing.T) {
	store := newTestStore(t)

	base := time.Now().Add(-time.Minute)
	for i := 0; i < 3; i++ {
		err := store.CreateScanLog(&models.ScanLog{
			Timestamp: base.Add(time.Duration(i) * time.Second),
			Level:     models.LogLevelInfo,
			Source:    "uptime",
			Message:   "cycle complete",
		})
		if err != nil {
			t.Fatalf("create log failed: %v", err)
		}
	}

	logs, err := store.GetRecentScanLogs(2)
	if err != nil {
		t.Fatalf("get logs failed: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(logs))
	}
	if logs[0].Timestamp.Before(logs[1].Timestamp) {
		t.Fatalf("expected newest first")
	}
	if logs[0].Source != "uptime" || logs[0].Level != models.LogLevelInfo {
		t.Fatalf("unexpected log row %+v", logs[0])
	}
}
