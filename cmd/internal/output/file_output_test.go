package output

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStageFixtureSkipsStateFiles(t *testing.T) {
	fixture := t.TempDir()
	dest := filepath.Join(t.TempDir(), "staged")

	files := map[string]string{
		"main.tf":               "# main",
		"terraform.tfvars":      "octopus_space_id = \"Spaces-1\"",
		"octoapply.state.json":  "{}",
		"octoapply.state.lock":  "owner",
		"subdir/variables.tf":   "# variables",
	}

	for name, content := range files {
		path := filepath.Join(fixture, name)
		if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
			t.Fatalf("failed to create fixture dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write fixture file: %v", err)
		}
	}

	if err := StageFixture(fixture, dest); err != nil {
		t.Fatalf("staging should have succeeded: %v", err)
	}

	for _, name := range []string{"main.tf", "terraform.tfvars", filepath.Join("subdir", "variables.tf")} {
		if _, err := os.Stat(filepath.Join(dest, name)); err != nil {
			t.Fatalf("%s should have been staged: %v", name, err)
		}
	}

	for _, name := range []string{"octoapply.state.json", "octoapply.state.lock"} {
		if _, err := os.Stat(filepath.Join(dest, name)); err == nil {
			t.Fatalf("%s should not have been staged", name)
		}
	}
}

func TestStageFixtureNoopWithoutDestination(t *testing.T) {
	if err := StageFixture(t.TempDir(), ""); err != nil {
		t.Fatalf("staging with no destination should be a noop: %v", err)
	}
}

func TestWriteFilesCreatesDestination(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out")

	if err := WriteFiles(map[string]string{"main.tf": "# main"}, dest, false); err != nil {
		t.Fatalf("writing should have succeeded: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(dest, "main.tf"))

	if err != nil {
		t.Fatalf("main.tf should have been written: %v", err)
	}

	if string(content) != "# main" {
		t.Fatalf("unexpected content: %s", content)
	}
}
