package files_manager

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/petermercell/3RF-2-EXR/contracts"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCheckInputDir(t *testing.T) {
	if err := CheckInputDir(t.TempDir()); err != nil {
		t.Errorf("valid directory rejected: %v", err)
	}
	if err := CheckInputDir(""); err == nil {
		t.Error("empty path accepted")
	}
	if err := CheckInputDir(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("missing directory accepted")
	}
	file := filepath.Join(t.TempDir(), "file.txt")
	touch(t, file)
	if err := CheckInputDir(file); err == nil {
		t.Error("regular file accepted as directory")
	}
}

func TestEnsureOutputDir(t *testing.T) {
	dir := t.TempDir()

	out, err := EnsureOutputDir(dir, contracts.FormatEXR)
	if err != nil {
		t.Fatal(err)
	}
	if out != filepath.Join(dir, "EXR") {
		t.Errorf("output dir = %s, want %s", out, filepath.Join(dir, "EXR"))
	}
	stat, err := os.Stat(out)
	if err != nil || !stat.IsDir() {
		t.Errorf("output dir was not created: %v", err)
	}

	// idempotent when the directory already exists
	if _, err := EnsureOutputDir(dir, contracts.FormatEXR); err != nil {
		t.Errorf("existing output dir rejected: %v", err)
	}

	out, err = EnsureOutputDir(dir, contracts.FormatHDR)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(out) != "HDR" {
		t.Errorf("hdr output dir = %s, want HDR", out)
	}
}

func TestGetRawPaths(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.3FR"))
	touch(t, filepath.Join(dir, "a.3fr"))
	touch(t, filepath.Join(dir, "c.3Fr"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "._a.3fr"))
	if err := os.Mkdir(filepath.Join(dir, "sub.3fr"), 0o755); err != nil {
		t.Fatal(err)
	}

	paths, err := GetRawPaths(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(dir, "a.3fr"),
		filepath.Join(dir, "b.3FR"),
		filepath.Join(dir, "c.3Fr"),
	}
	if len(paths) != len(want) {
		t.Fatalf("found %d files, want %d: %v", len(paths), len(want), paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %s, want %s", i, paths[i], want[i])
		}
	}
}

func TestGetRawPathsEmptyDir(t *testing.T) {
	paths, err := GetRawPaths(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 0 {
		t.Errorf("found %d files in empty dir", len(paths))
	}
}

func TestOutputPath(t *testing.T) {
	got := OutputPath("/out/EXR", "/in/shot_001.3FR", ".exr")
	want := filepath.Join("/out/EXR", "shot_001.exr")
	if got != want {
		t.Errorf("OutputPath = %s, want %s", got, want)
	}
}

type scriptedConverter struct {
	failOn map[string]bool
	calls  []string
}

func (c *scriptedConverter) Convert(inputPath, outputPath string, opts contracts.Options) contracts.ConversionResult {
	c.calls = append(c.calls, inputPath)
	if c.failOn[filepath.Base(inputPath)] {
		return contracts.ConversionResult{
			Input:   inputPath,
			Output:  outputPath,
			Message: errors.New("decode failed").Error(),
		}
	}
	return contracts.ConversionResult{OK: true, Input: inputPath, Output: outputPath}
}

func TestRunFailureIsolation(t *testing.T) {
	job := contracts.BatchJob{
		OutputDir: "/out",
		Files:     []string{"/in/a.3fr", "/in/b.3fr", "/in/c.3fr"},
		Opts:      contracts.Options{Exposure: 1.0},
	}
	conv := &scriptedConverter{failOn: map[string]bool{"b.3fr": true}}

	succeeded, failed := Run(job, conv, ".exr")
	if succeeded != 2 || failed != 1 {
		t.Errorf("Run = (%d, %d), want (2, 1)", succeeded, failed)
	}
	if len(conv.calls) != 3 {
		t.Errorf("converter called %d times, want 3 (batch must not stop on failure)", len(conv.calls))
	}
}

func TestRunAllSucceed(t *testing.T) {
	job := contracts.BatchJob{
		Files: []string{"/in/a.3fr", "/in/b.3fr"},
		Opts:  contracts.Options{Exposure: 1.0},
	}
	conv := &scriptedConverter{}

	succeeded, failed := Run(job, conv, ".exr")
	if succeeded != 2 || failed != 0 {
		t.Errorf("Run = (%d, %d), want (2, 0)", succeeded, failed)
	}
}
