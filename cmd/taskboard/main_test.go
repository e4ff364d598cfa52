package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nick-dorsch/taskboard/internal/export"
	"github.com/nick-dorsch/taskboard/internal/generate"
	"github.com/nick-dorsch/taskboard/pkg/models"
)

type testEnv struct {
	dir        string
	configPath string
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "")

	dir := t.TempDir()
	return newTestEnv(t, dir, filepath.Join(dir, "taskboard.db"))
}

func newTestEnv(t *testing.T, dir, dbPath string) *testEnv {
	t.Helper()

	configPath := filepath.Join(dir, filepath.Base(dbPath)+".yaml")
	config := "store:\n" +
		"  driver: sqlite\n" +
		"  path: " + dbPath + "\n" +
		"snapshot:\n" +
		"  path: " + filepath.Join(dir, "snapshot.jsonl") + "\n"
	if err := os.WriteFile(configPath, []byte(config), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return &testEnv{dir: dir, configPath: configPath}
}

func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	app := NewApp(&out)
	argv := append([]string{
		"taskboard",
		"--config", e.configPath,
		"--env-file", filepath.Join(e.dir, "missing.env"),
		"--log-level", "error",
	}, args...)
	err := app.Command().Run(context.Background(), argv)
	return out.String(), err
}

func (e *testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	if err != nil {
		t.Fatalf("taskboard %s failed: %v", strings.Join(args, " "), err)
	}
	return out
}

func addedID(t *testing.T, out string) string {
	t.Helper()
	// Added <id>: <title>
	fields := strings.Fields(out)
	if len(fields) < 2 || fields[0] != "Added" {
		t.Fatalf("unexpected add output %q", out)
	}
	return strings.TrimSuffix(fields[1], ":")
}

func TestTaskLifecycle(t *testing.T) {
	env := setupTestEnv(t)

	out := env.mustRun(t, "add", "--description", "semi-skimmed", "Buy", "milk")
	if !strings.Contains(out, "Buy milk") {
		t.Errorf("expected title in output, got %q", out)
	}
	id := addedID(t, out)

	out = env.mustRun(t, "list")
	if !strings.Contains(out, "Buy milk") || !strings.Contains(out, "todo") || !strings.Contains(out, id) {
		t.Errorf("expected task in list, got %q", out)
	}

	out = env.mustRun(t, "move", id, "done")
	if !strings.Contains(out, `Moved "Buy milk" to Done`) {
		t.Errorf("unexpected move output %q", out)
	}

	out = env.mustRun(t, "list", "--status", "done")
	if !strings.Contains(out, "Buy milk") {
		t.Errorf("expected task in done column, got %q", out)
	}
	out = env.mustRun(t, "list", "--status", "todo")
	if strings.TrimSpace(out) != "No tasks" {
		t.Errorf("expected empty todo column, got %q", out)
	}

	out = env.mustRun(t, "rm", id)
	if !strings.Contains(out, "Deleted "+id) {
		t.Errorf("unexpected rm output %q", out)
	}

	if _, err := env.run(t, "rm", id); !errors.Is(err, models.ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound on second rm, got %v", err)
	}
}

func TestCommandArgumentErrors(t *testing.T) {
	env := setupTestEnv(t)

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"add without title", []string{"add"}, errMissingArgs},
		{"move without status", []string{"move", "abc"}, errMissingArgs},
		{"move bad status", []string{"move", "abc", "blocked"}, models.ErrInvalidStatus},
		{"list bad status", []string{"list", "--status", "pending"}, models.ErrInvalidStatus},
		{"rm without id", []string{"rm"}, errMissingArgs},
		{"generate without goal", []string{"generate"}, errMissingArgs},
		{"blank title", []string{"add", "  "}, models.ErrEmptyTitle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.run(t, tt.args...)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestUnknownCommand(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.run(t, "bogus")
	if err == nil || !strings.Contains(err.Error(), `unknown command "bogus"`) {
		t.Errorf("expected unknown command error, got %v", err)
	}
}

func TestGenerateWithoutKey(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.run(t, "generate", "plan", "a", "trip")
	if !errors.Is(err, generate.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestStatus(t *testing.T) {
	env := setupTestEnv(t)

	for i := 0; i < 7; i++ {
		env.mustRun(t, "add", "task", string(rune('A'+i)))
	}
	id := addedID(t, env.mustRun(t, "add", "working"))
	env.mustRun(t, "move", id, "inprogress")

	out := env.mustRun(t, "status")
	for _, want := range []string{"To Do:       7", "In Progress: 1", "Done:        0", "Total:       8", "Up next:", "• task G", "... and 2 more"} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "• task A") {
		t.Errorf("expected only the newest todo items, got:\n%s", out)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	env := setupTestEnv(t)

	env.mustRun(t, "add", "Buy milk")
	id := addedID(t, env.mustRun(t, "add", "Call dentist"))
	env.mustRun(t, "move", id, "done")

	snapPath := filepath.Join(env.dir, "exported.jsonl")
	out := env.mustRun(t, "snapshot", "export", "--path", snapPath)
	if !strings.Contains(out, snapPath) {
		t.Errorf("unexpected export output %q", out)
	}

	fresh := newTestEnv(t, env.dir, filepath.Join(env.dir, "fresh.db"))
	out = fresh.mustRun(t, "snapshot", "import", "--path", snapPath)
	if !strings.Contains(out, "Imported 2 task(s)") {
		t.Errorf("unexpected import output %q", out)
	}

	out = fresh.mustRun(t, "list", "--status", "done")
	if !strings.Contains(out, "Call dentist") || !strings.Contains(out, id) {
		t.Errorf("expected imported task with its id, got %q", out)
	}
}

func TestSnapshotDefaultPath(t *testing.T) {
	env := setupTestEnv(t)

	env.mustRun(t, "add", "Buy milk")
	env.mustRun(t, "snapshot", "export")

	if _, err := os.Stat(filepath.Join(env.dir, "snapshot.jsonl")); err != nil {
		t.Errorf("expected snapshot at configured path: %v", err)
	}
}

func TestExport(t *testing.T) {
	env := setupTestEnv(t)
	env.mustRun(t, "add", "Buy milk")

	out := env.mustRun(t, "export", "--format", "csv")
	if !strings.HasPrefix(out, "column,id,title,description,status,created_at") {
		t.Errorf("unexpected csv header: %q", out)
	}
	if !strings.Contains(out, "Buy milk") {
		t.Errorf("expected task in csv, got %q", out)
	}

	pdfPath := filepath.Join(env.dir, "board.pdf")
	env.mustRun(t, "export", "--format", "pdf", "--out", pdfPath)
	data, err := os.ReadFile(pdfPath)
	if err != nil {
		t.Fatalf("failed to read pdf: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("expected a PDF file")
	}

	if _, err := env.run(t, "export", "--format", "xml"); !errors.Is(err, export.ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestInvalidConfig(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	dir := t.TempDir()
	configPath := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(configPath, []byte("store:\n  driver: postgres\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	env := &testEnv{dir: dir, configPath: configPath}
	_, err := env.run(t, "list")
	if err == nil || !strings.Contains(err.Error(), "load config") {
		t.Errorf("expected config error, got %v", err)
	}
}

func TestEnvFileLoaded(t *testing.T) {
	env := setupTestEnv(t)

	dbPath := filepath.Join(env.dir, "from-env.db")
	envFile := filepath.Join(env.dir, "test.env")
	if err := os.WriteFile(envFile, []byte("TASKBOARD_LOG_LEVEL=error\nTASKBOARD_TEST_MARKER="+dbPath+"\n"), 0644); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	t.Cleanup(func() {
		os.Unsetenv("TASKBOARD_TEST_MARKER")
		os.Unsetenv("TASKBOARD_LOG_LEVEL")
	})

	var out bytes.Buffer
	app := NewApp(&out)
	err := app.Command().Run(context.Background(), []string{"taskboard", "--config", env.configPath, "--env-file", envFile, "status"})
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if os.Getenv("TASKBOARD_TEST_MARKER") != dbPath {
		t.Errorf("expected env file to be loaded")
	}
}

func TestShow(t *testing.T) {
	env := setupTestEnv(t)

	id := addedID(t, env.mustRun(t, "add", "--description", "Pick up **semi-skimmed** from the corner shop", "Buy milk"))

	out := env.mustRun(t, "show", id)
	for _, want := range []string{"Buy milk", "To Do", "semi-skimmed", "corner shop", id} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}

	if _, err := env.run(t, "show", "missing"); !errors.Is(err, models.ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestSnapshotImportGlob(t *testing.T) {
	env := setupTestEnv(t)

	env.mustRun(t, "add", "Buy milk")
	backups := filepath.Join(env.dir, "backups", "2025")
	env.mustRun(t, "snapshot", "export", "--path", filepath.Join(backups, "a.jsonl"))
	env.mustRun(t, "add", "Call dentist")
	env.mustRun(t, "snapshot", "export", "--path", filepath.Join(backups, "b.jsonl"))

	fresh := newTestEnv(t, env.dir, filepath.Join(env.dir, "fresh.db"))
	out := fresh.mustRun(t, "snapshot", "import", "--path", filepath.Join(env.dir, "backups", "**", "*.jsonl"))
	if !strings.Contains(out, "Imported 1 task(s)") || !strings.Contains(out, "Imported 2 task(s)") {
		t.Errorf("expected both files imported, got %q", out)
	}

	out = fresh.mustRun(t, "status")
	if !strings.Contains(out, "Total:       2") {
		t.Errorf("expected upserts to leave 2 tasks, got:\n%s", out)
	}

	if _, err := fresh.run(t, "snapshot", "import", "--path", filepath.Join(env.dir, "nope", "*.jsonl")); err == nil {
		t.Error("expected import without matches to fail")
	}
}
