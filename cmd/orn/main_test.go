package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orn/internal/consttable"
	"orn/internal/logging"
	"orn/internal/project"
	"orn/internal/version"
)

const (
	testTable = `[FOO]
type = "u64"
value = "0x10"

[BAR]
type = "u8"
value = 1
comment = "Bar flag"
`
	testSource = "module demo::m {\n    fun f(): u64 { FOO() }\n}\n"
)

// runOrn executes the root command in dir with fresh flag state.
func runOrn(t *testing.T, dir string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Chdir(dir)
	t.Setenv(logging.EnvLogLevel, "")
	t.Setenv(logging.EnvJSONLog, "")
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, ".cache"))

	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err = rootCmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func newProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, project.DefaultTable), testTable)
	writeFile(t, filepath.Join(dir, "sources", "m.move"), testSource)
	return dir
}

func TestUpdateConstWritesFiles(t *testing.T) {
	dir := newProject(t)

	stdout, _, err := runOrn(t, dir, "update-const", "--no-update-check", "--ui", "off", "--color", "off")
	require.NoError(t, err)

	got := readFile(t, filepath.Join(dir, "sources", "m.move"))
	assert.Contains(t, got, "    const FOO: u64 = 0x10;\n")
	assert.Contains(t, got, "fun f(): u64 { FOO }")
	assert.NotContains(t, got, "BAR")

	assert.Contains(t, stdout, filepath.Join("sources", "m.move")+": updated")
	assert.Contains(t, stdout, "Unused: BAR")
	assert.NotContains(t, stdout, "Unused: FOO")
}

func TestUpdateConstIsIdempotent(t *testing.T) {
	dir := newProject(t)
	path := filepath.Join(dir, "sources", "m.move")

	_, _, err := runOrn(t, dir, "update-const", "--no-update-check", "--ui", "off")
	require.NoError(t, err)
	first := readFile(t, path)

	stdout, _, err := runOrn(t, dir, "update-const", "--no-update-check", "--ui", "off")
	require.NoError(t, err)
	assert.Equal(t, first, readFile(t, path))
	assert.NotContains(t, stdout, "updated")
}

func TestUpdateConstCheck(t *testing.T) {
	dir := newProject(t)
	path := filepath.Join(dir, "sources", "m.move")

	_, stderr, err := runOrn(t, dir, "update-const", "--check", "--no-update-check", "--ui", "off")
	require.ErrorIs(t, err, errSilent)
	assert.Equal(t, testSource, readFile(t, path))
	assert.Contains(t, stderr, "1 file(s) out of date")

	_, _, err = runOrn(t, dir, "update-const", "--no-update-check", "--ui", "off")
	require.NoError(t, err)

	_, _, err = runOrn(t, dir, "update-const", "--check", "--no-update-check", "--ui", "off")
	assert.NoError(t, err)
}

func TestUpdateConstStdout(t *testing.T) {
	dir := newProject(t)
	path := filepath.Join(dir, "sources", "m.move")

	stdout, stderr, err := runOrn(t, dir, "update-const", "--stdout", "--path", path, "--no-update-check")
	require.NoError(t, err)
	assert.Contains(t, stdout, "const FOO: u64 = 0x10;")
	assert.Contains(t, stderr, "Unused: BAR")
	assert.Equal(t, testSource, readFile(t, path))
}

func TestUpdateConstRejectsConflictingFlags(t *testing.T) {
	dir := newProject(t)
	_, _, err := runOrn(t, dir, "update-const", "--stdout", "--check")
	assert.ErrorContains(t, err, "--stdout cannot be used with --check")

	_, _, err = runOrn(t, dir, "update-const", "--format", "yaml")
	assert.ErrorContains(t, err, "unsupported output format")
}

func TestUpdateConstJSON(t *testing.T) {
	dir := newProject(t)

	stdout, _, err := runOrn(t, dir, "update-const", "--format", "json", "--no-update-check")
	require.NoError(t, err)

	var report updateReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, "write", report.Mode)
	assert.Equal(t, project.DefaultTable, report.Table)
	require.Len(t, report.Files, 1)
	f := report.Files[0]
	assert.True(t, f.Changed)
	assert.Equal(t, "after-brace", f.Placement)
	assert.Equal(t, []string{"FOO"}, f.Used)
	assert.Equal(t, []string{"BAR"}, f.Unused)
	require.Equal(t, 2, report.Diagnostics.Count)
	var codes []string
	for _, d := range report.Diagnostics.Diagnostics {
		codes = append(codes, d.Code)
	}
	assert.ElementsMatch(t, []string{"CST1001", "RWR2001"}, codes)
}

func TestUpdateConstUsesManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, project.ManifestName), `[table]
path = "config/values.toml"

[update]
paths = ["sources"]
`)
	writeFile(t, filepath.Join(dir, "config", "values.toml"), testTable)
	writeFile(t, filepath.Join(dir, "sources", "m.move"), testSource)
	writeFile(t, filepath.Join(dir, "scripts", "other.move"), testSource)

	// запуск из подкаталога: orn.toml ищется вверх
	sub := filepath.Join(dir, "sources")
	_, _, err := runOrn(t, sub, "update-const", "--no-update-check", "--ui", "off")
	require.NoError(t, err)

	assert.Contains(t, readFile(t, filepath.Join(dir, "sources", "m.move")), "const FOO")
	assert.Equal(t, testSource, readFile(t, filepath.Join(dir, "scripts", "other.move")))
}

func TestUpdateConstCache(t *testing.T) {
	dir := newProject(t)

	_, _, err := runOrn(t, dir, "update-const", "--cache", "--no-update-check", "--ui", "off")
	require.NoError(t, err)

	stdout, _, err := runOrn(t, dir, "update-const", "--cache", "--format", "json", "--no-update-check")
	require.NoError(t, err)
	var report updateReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	require.Len(t, report.Files, 1)
	assert.True(t, report.Files[0].Cached)
	assert.Equal(t, []string{"BAR"}, report.Files[0].Unused)
}

func TestUpdateConstClearCache(t *testing.T) {
	dir := newProject(t)

	_, _, err := runOrn(t, dir, "update-const", "--cache", "--no-update-check", "--ui", "off")
	require.NoError(t, err)

	stdout, _, err := runOrn(t, dir, "update-const", "--cache", "--clear-cache", "--format", "json", "--no-update-check")
	require.NoError(t, err)
	var report updateReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	require.Len(t, report.Files, 1)
	assert.False(t, report.Files[0].Cached)
	assert.Equal(t, []string{"BAR"}, report.Files[0].Unused)

	// без --cache очистка тоже работает
	_, _, err = runOrn(t, dir, "update-const", "--clear-cache", "--no-update-check", "--ui", "off")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, ".cache", toolName))
	assert.True(t, os.IsNotExist(err))
}

func TestUpdateConstStrictCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, project.DefaultTable), `[A]
type = "u64"
value = "B + 1"

[B]
type = "u64"
value = "A"
`)
	writeFile(t, filepath.Join(dir, "m.move"), testSource)

	_, _, err := runOrn(t, dir, "update-const", "--strict", "--no-update-check", "--ui", "off")
	assert.ErrorIs(t, err, consttable.ErrCircularReference)
	assert.Equal(t, testSource, readFile(t, filepath.Join(dir, "m.move")))

	// без --strict цикл только предупреждение
	_, _, err = runOrn(t, dir, "update-const", "--no-update-check", "--ui", "off")
	assert.NoError(t, err)
}

func TestUpdateConstMissingTable(t *testing.T) {
	dir := t.TempDir()
	_, _, err := runOrn(t, dir, "update-const", "--table", "nope.toml", "--no-update-check")
	assert.ErrorIs(t, err, project.ErrTableMissing)
}

func TestTableCommandOrdersDependencies(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, project.DefaultTable), `[A]
type = "u64"
value = "B + 1"

[B]
type = "u64"
value = "0x1"
`)
	stdout, _, err := runOrn(t, dir, "table")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	assert.Equal(t, []string{"B: u64 = 0x1", "A: u64 = 0x2"}, lines)

	stdout, _, err = runOrn(t, dir, "table", "--format", "json")
	require.NoError(t, err)
	var payload tablePayload
	require.NoError(t, json.Unmarshal([]byte(stdout), &payload))
	assert.True(t, payload.Converged)
	require.Len(t, payload.Constants, 2)
	assert.Equal(t, "B", payload.Constants[0].Name)
}

func TestVersionJSON(t *testing.T) {
	stdout, _, err := runOrn(t, t.TempDir(), "version", "--format", "json", "--hash")
	require.NoError(t, err)
	var payload buildInfo
	require.NoError(t, json.Unmarshal([]byte(stdout), &payload))
	assert.Equal(t, "orn", payload.Tool)
	assert.Equal(t, versionTagline, payload.Tagline)
	assert.NotEmpty(t, payload.GitCommit)
	assert.Empty(t, payload.BuildDate)

	stdout, _, err = runOrn(t, t.TempDir(), "version", "--color", "off", "--date")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "orn "+version.Version+": "))
	assert.Contains(t, stdout, "built:")
}

func TestReadUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, "on": uiModeOn, " off ": uiModeOff} {
		got, err := readUIMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := readUIMode("sometimes")
	assert.Error(t, err)

	assert.False(t, shouldUseTUI(uiModeOn, false))
	assert.True(t, shouldUseTUI(uiModeOn, true))
}
