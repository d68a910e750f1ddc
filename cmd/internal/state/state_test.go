package state

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMissingStateFileIsEmpty(t *testing.T) {
	loaded, err := Load(filepath.Join(t.TempDir(), "missing.state.json"))

	if err != nil {
		t.Fatalf("A missing state file should not be an error: %v", err)
	}

	if len(loaded.Resources) != 0 {
		t.Fatalf("A missing state file should load as an empty state")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "octoapply.state.json")

	current := NewState()
	current.Record("octopusdeploy_project.deploy_frontend_project", "Projects-1", "hash-1",
		[]string{"octopusdeploy_project_group.project_group"})

	if err := current.Save(path); err != nil {
		t.Fatalf("Should have saved the state: %v", err)
	}

	loaded, err := Load(path)

	if err != nil {
		t.Fatalf("Should have loaded the state: %v", err)
	}

	entry, ok := loaded.Entry("octopusdeploy_project.deploy_frontend_project")

	if !ok {
		t.Fatalf("The recorded resource should survive the round trip")
	}

	if entry.Id != "Projects-1" || entry.Hash != "hash-1" {
		t.Fatalf("The recorded entry should survive the round trip")
	}

	if len(entry.Dependencies) != 1 || entry.Dependencies[0] != "octopusdeploy_project_group.project_group" {
		t.Fatalf("The recorded dependencies should survive the round trip, got %v", entry.Dependencies)
	}

	if loaded.Serial != 1 {
		t.Fatalf("Saving should bump the serial, got %d", loaded.Serial)
	}
}

func TestForget(t *testing.T) {
	current := NewState()
	current.Record("octopusdeploy_project.orphan", "Projects-2", "hash", nil)
	current.Forget("octopusdeploy_project.orphan")

	if _, ok := current.Entry("octopusdeploy_project.orphan"); ok {
		t.Fatalf("A forgotten resource should not be in the state")
	}
}

func TestUnsupportedVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "octoapply.state.json")

	if err := os.WriteFile(path, []byte(`{"version": 99, "resources": {}}`), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatalf("An unsupported state version should be rejected")
	}
}

func TestCorruptStateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "octoapply.state.json")

	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatalf("A corrupt state file should be rejected")
	}
}

func TestLockIsExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "octoapply.state.json")

	release, err := Lock(path, "run-1")

	if err != nil {
		t.Fatalf("Should have taken the lock: %v", err)
	}

	if _, err := Lock(path, "run-2"); err == nil {
		t.Fatalf("A second lock attempt should fail while the first is held")
	}

	release()

	release2, err := Lock(path, "run-3")

	if err != nil {
		t.Fatalf("Should have taken the lock after release: %v", err)
	}

	release2()
}

func TestLockRecordsTheOwner(t *testing.T) {
	path := filepath.Join(t.TempDir(), "octoapply.state.json")

	release, err := Lock(path, "run-1")

	if err != nil {
		t.Fatalf("Should have taken the lock: %v", err)
	}

	defer release()

	holder, err := os.ReadFile(path + ".lock")

	if err != nil {
		t.Fatalf("The lock file should exist while the lock is held: %v", err)
	}

	if string(holder) != "run-1" {
		t.Fatalf("The lock file should name its owner, got %q", string(holder))
	}

	if _, err := Lock(path, "run-2"); err == nil || !strings.Contains(err.Error(), "run-1") {
		t.Fatalf("A contending run should be told who holds the lock, got %v", err)
	}
}
