package config

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readZipEntries(t *testing.T, path string) map[string]string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open report: %v", err)
	}
	defer zr.Close()

	out := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		data, _ := io.ReadAll(rc)
		rc.Close()
		out[f.Name] = string(data)
	}
	return out
}

func TestReport_StoreCopySurvivesSourceRemoval(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "report.zip")
	r, err := (&ReporterConfig{Destination: dest}).Prepare()
	if err != nil {
		t.Fatalf("Prepare() error: %v", err)
	}

	workspace := t.TempDir()
	if err := os.MkdirAll(filepath.Join(workspace, "img"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(workspace, "sco_1.html"), []byte("page"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(workspace, "img", "logo.png"), []byte("png"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := r.StoreCopy("workspace", workspace); err != nil {
		t.Fatalf("StoreCopy() error: %v", err)
	}
	copies := append([]string(nil), r.copies...)
	if err := os.RemoveAll(workspace); err != nil {
		t.Fatal(err)
	}
	r.StoreData("tree.txt", []byte("A\n  B\n"))

	if err := r.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	entries := readZipEntries(t, dest)
	if entries["workspace/sco_1.html"] != "page" {
		t.Errorf("workspace page missing from report, entries: %v", entries)
	}
	if entries["workspace/img/logo.png"] != "png" {
		t.Error("nested workspace file missing from report")
	}
	if entries["tree.txt"] != "A\n  B\n" {
		t.Error("stored data missing from report")
	}
	if !strings.Contains(entries["MANIFEST"], "workspace") {
		t.Error("MANIFEST should list stored entries")
	}
	for _, dir := range copies {
		if _, err := os.Stat(dir); !os.IsNotExist(err) {
			t.Errorf("temporary copy %s should be removed on Close", dir)
		}
	}
}

func TestReport_StoreDuplicateDataPanics(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	r.StoreData("a", []byte("1"))

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate data entry")
		}
	}()
	r.StoreData("a", []byte("2"))
}

func TestReportClose_NilReport(t *testing.T) {
	var r *Report
	if err := r.Close(); err != nil {
		t.Errorf("Close on nil report should not error, got: %v", err)
	}
	if r.Name() != "" {
		t.Error("nil report should have empty name")
	}
	r.Store("x", "y")
	r.StoreData("x", nil)
	if err := r.StoreCopy("x", "y"); err != nil {
		t.Errorf("StoreCopy on nil report should not error, got: %v", err)
	}
}

func TestReportClose_NilFile(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	if err := r.Close(); err != nil {
		t.Errorf("Close with nil file should not error, got: %v", err)
	}
}

func TestReporterConfig_PrepareFallsBackToTemp(t *testing.T) {
	conf := &ReporterConfig{Destination: filepath.Join(t.TempDir(), "missing", "report.zip")}

	r, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	name := r.Name()
	t.Cleanup(func() { os.Remove(name) })

	if filepath.Dir(name) == filepath.Dir(conf.Destination) {
		t.Errorf("report created at %s, want temp location", name)
	}
	r.StoreData("notes.txt", []byte("kept"))
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	zr, err := zip.OpenReader(name)
	if err != nil {
		t.Fatalf("open report: %v", err)
	}
	defer zr.Close()
	if len(zr.File) != 2 || zr.File[0].Name != "MANIFEST" || zr.File[1].Name != "notes.txt" {
		t.Errorf("report entries = %d, want MANIFEST then notes.txt", len(zr.File))
	}
}
