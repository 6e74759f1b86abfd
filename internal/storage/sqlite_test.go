package storage

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestSaveGameRoundTrip(t *testing.T) {
	store := openTestStore(t)

	state := bytes.Repeat([]byte("dune"), 1000)
	info := SaveInfo{Name: "slot1", Scenario: "skirmish", Tick: 420, Seed: 77, Hash: "abc"}
	if _, err := store.SaveGame(info, state); err != nil {
		t.Fatalf("SaveGame() failed: %v", err)
	}

	got, data, err := store.LoadGame("slot1")
	if err != nil {
		t.Fatalf("LoadGame() failed: %v", err)
	}
	if !bytes.Equal(data, state) {
		t.Errorf("LoadGame() returned %d bytes, expected %d", len(data), len(state))
	}
	if got.Scenario != "skirmish" || got.Tick != 420 || got.Seed != 77 || got.Hash != "abc" {
		t.Errorf("got %+v, expected skirmish/420/77/abc", got)
	}
	if got.Size >= len(state) {
		t.Errorf("stored size %d, expected compression below %d", got.Size, len(state))
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt was not set")
	}
}

func TestSaveGameOverwrites(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.SaveGame(SaveInfo{Name: "quick", Scenario: "siege", Tick: 1}, []byte("one")); err != nil {
		t.Fatalf("SaveGame() failed: %v", err)
	}
	if _, err := store.SaveGame(SaveInfo{Name: "quick", Scenario: "siege", Tick: 2}, []byte("two")); err != nil {
		t.Fatalf("SaveGame() failed: %v", err)
	}

	saves, err := store.ListSaves()
	if err != nil {
		t.Fatalf("ListSaves() failed: %v", err)
	}
	if len(saves) != 1 {
		t.Fatalf("got %d saves, expected 1", len(saves))
	}
	info, data, err := store.LoadGame("quick")
	if err != nil {
		t.Fatalf("LoadGame() failed: %v", err)
	}
	if info.Tick != 2 || string(data) != "two" {
		t.Errorf("got tick %d data %q, expected 2 \"two\"", info.Tick, data)
	}
}

func TestDeleteSave(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.SaveGame(SaveInfo{Name: "gone", Scenario: "harvest"}, []byte("x")); err != nil {
		t.Fatalf("SaveGame() failed: %v", err)
	}
	if err := store.DeleteSave("gone"); err != nil {
		t.Fatalf("DeleteSave() failed: %v", err)
	}
	if _, _, err := store.LoadGame("gone"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadGame() after delete: got %v, expected ErrNotFound", err)
	}
	if err := store.DeleteSave("gone"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteSave(): got %v, expected ErrNotFound", err)
	}
}

func TestReplays(t *testing.T) {
	store := openTestStore(t)

	replays := []ReplayInfo{
		{Name: "r1", Scenario: "skirmish", Seed: 1, Ticks: 100, FinalHash: "h1", Commands: 3},
		{Name: "r2", Scenario: "skirmish", Seed: 2, Ticks: 200, FinalHash: "h2", Commands: 5},
		{Name: "r3", Scenario: "siege", Seed: 3, Ticks: 300, FinalHash: "h3"},
	}
	for _, r := range replays {
		if _, err := store.SaveReplay(r, []byte(r.Name+"-data")); err != nil {
			t.Fatalf("SaveReplay(%s) failed: %v", r.Name, err)
		}
	}

	all, err := store.ListReplays("")
	if err != nil {
		t.Fatalf("ListReplays() failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("got %d replays, expected 3", len(all))
	}

	skirmish, err := store.ListReplays("skirmish")
	if err != nil {
		t.Fatalf("ListReplays() failed: %v", err)
	}
	if len(skirmish) != 2 {
		t.Fatalf("got %d skirmish replays, expected 2", len(skirmish))
	}
	// Same timestamp resolution, so the newer ID comes first
	if skirmish[0].Name != "r2" {
		t.Errorf("first replay = %s, expected r2", skirmish[0].Name)
	}

	info, data, err := store.LoadReplay("r2")
	if err != nil {
		t.Fatalf("LoadReplay() failed: %v", err)
	}
	if string(data) != "r2-data" || info.Commands != 5 || info.FinalHash != "h2" {
		t.Errorf("got %+v %q, expected r2 with 5 commands", info, data)
	}

	if _, _, err := store.LoadReplay("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadReplay(missing): got %v, expected ErrNotFound", err)
	}
	if err := store.DeleteReplay("r1"); err != nil {
		t.Errorf("DeleteReplay() failed: %v", err)
	}
}

func TestRecentRuns(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 5; i++ {
		_, err := store.SaveRun(RunResult{
			Scenario: "skirmish",
			Seed:     uint32(i),
			Ticks:    1000,
			Hash:     "h",
			Kills:    i,
			Duration: 1500 * time.Millisecond,
		})
		if err != nil {
			t.Fatalf("SaveRun() failed: %v", err)
		}
	}
	if _, err := store.SaveRun(RunResult{Scenario: "siege", Hash: "x", Desync: true}); err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}

	runs, err := store.RecentRuns("skirmish", 3)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("got %d runs, expected 3", len(runs))
	}
	if runs[0].Seed != 4 {
		t.Errorf("newest run seed = %d, expected 4", runs[0].Seed)
	}
	if runs[0].Duration != 1500*time.Millisecond {
		t.Errorf("duration = %v, expected 1.5s", runs[0].Duration)
	}

	siege, err := store.RecentRuns("siege", 0)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}
	if len(siege) != 1 || !siege[0].Desync {
		t.Errorf("got %+v, expected one desynced run", siege)
	}
}

func TestDistinctSeeds(t *testing.T) {
	store := openTestStore(t)

	for _, r := range []RunResult{
		{Scenario: "harvest", Seed: 9, Hash: "a"},
		{Scenario: "harvest", Seed: 9, Hash: "a"},
		{Scenario: "harvest", Seed: 10, Hash: "b"},
		{Scenario: "harvest", Seed: 10, Hash: "c"},
	} {
		if _, err := store.SaveRun(r); err != nil {
			t.Fatalf("SaveRun() failed: %v", err)
		}
	}

	hashes, err := store.DistinctSeeds("harvest")
	if err != nil {
		t.Fatalf("DistinctSeeds() failed: %v", err)
	}
	if len(hashes[9]) != 1 {
		t.Errorf("seed 9 has %d hashes, expected 1", len(hashes[9]))
	}
	if len(hashes[10]) != 2 {
		t.Errorf("seed 10 has %d hashes, expected 2", len(hashes[10]))
	}
}
