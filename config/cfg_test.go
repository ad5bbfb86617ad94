package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/rupor-github/gencfg"
	yaml "gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
	if cfg.Document.CourseTitle == "" {
		t.Error("Default course title should not be empty")
	}
	if want := []string{"h1", "h2", "h3"}; !slices.Equal(cfg.Document.SplitTags, want) {
		t.Errorf("Default split tags = %v, want %v", cfg.Document.SplitTags, want)
	}
	if len(cfg.Document.Assets) != 0 {
		t.Errorf("Default assets = %v, want none", cfg.Document.Assets)
	}
	if !cfg.Document.Images.Optimize || cfg.Document.Images.MaxWidth != 700 || cfg.Document.Images.JPEGQuality != 85 {
		t.Errorf("Unexpected default images config: %+v", cfg.Document.Images)
	}
}

func TestLoadConfiguration_ExpandsDestinations(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	for name, dst := range map[string]string{
		"conversion.log":       cfg.Logging.FileLogger.Destination,
		"doc2scorm-report.zip": cfg.Reporting.Destination,
	} {
		if strings.Contains(dst, "{{") {
			t.Errorf("Destination %q was not expanded: %q", name, dst)
		}
		if filepath.Base(dst) != name || !filepath.IsAbs(dst) {
			t.Errorf("Destination = %q, want absolute path to %s", dst, name)
		}
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	path := writeConfig(t, `version: 1
document:
  course_title: "Curso de prueba"
  split_tags: [h1, h3]
  fix_zip: true
  manifest:
    identifier: "com.example.course"
    pretty: false
  images:
    optimize: false
    max_width: 1024
    jpeg_quality_level: 60
logging:
  console:
    level: debug
`)

	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Document.CourseTitle != "Curso de prueba" {
		t.Errorf("CourseTitle = %q", cfg.Document.CourseTitle)
	}
	if want := []string{"h1", "h3"}; !slices.Equal(cfg.Document.SplitTags, want) {
		t.Errorf("SplitTags = %v, want %v", cfg.Document.SplitTags, want)
	}
	if !cfg.Document.FixZip {
		t.Error("Expected FixZip to be true")
	}
	if cfg.Document.Manifest.Identifier != "com.example.course" || cfg.Document.Manifest.Pretty {
		t.Errorf("Unexpected manifest config: %+v", cfg.Document.Manifest)
	}
	if cfg.Document.Images.Optimize || cfg.Document.Images.MaxWidth != 1024 || cfg.Document.Images.JPEGQuality != 60 {
		t.Errorf("Unexpected images config: %+v", cfg.Document.Images)
	}
	if cfg.Logging.ConsoleLogger.Level != "debug" {
		t.Errorf("Console level = %q, want debug", cfg.Logging.ConsoleLogger.Level)
	}
	// not mentioned in the file - must come from defaults
	if cfg.Logging.FileLogger.Level != "none" {
		t.Errorf("File level = %q, want none", cfg.Logging.FileLogger.Level)
	}
}

func TestLoadConfiguration_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "invalid yaml",
			body: "version: 1\ndocument:\n  fix_zip: true\n  invalid indent\n",
		},
		{
			name: "unknown field",
			body: "version: 1\nunknown_field: value\n",
		},
		{
			name: "wrong version",
			body: "version: 2\n",
		},
		{
			name: "empty split tags",
			body: "version: 1\ndocument:\n  split_tags: []\n",
		},
		{
			name: "jpeg quality out of range",
			body: "version: 1\ndocument:\n  images:\n    jpeg_quality_level: 10\n",
		},
		{
			name: "empty course title",
			body: "version: 1\ndocument:\n  course_title: \"\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfiguration(writeConfig(t, tt.body)); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestLoadConfiguration_NonExistentFile(t *testing.T) {
	if _, err := LoadConfiguration("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestLoadConfiguration_WithOptions(t *testing.T) {
	option := func(opts *gencfg.ProcessingOptions) {}

	cfg, err := LoadConfiguration("", option)
	if err != nil {
		t.Fatalf("LoadConfiguration() with options error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
}

func TestPrepare(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Prepare() returned empty data")
	}
	if _, err := unmarshalConfig(data, &Config{}, true); err != nil {
		t.Errorf("Prepared config is not valid: %v", err)
	}
}

func TestDump(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	cfg.Document.CourseTitle = "Dumped"

	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	if !strings.Contains(string(data), "course_title: Dumped") {
		t.Errorf("Dump() output does not contain course title:\n%s", data)
	}

	var back Config
	if err := yaml.Unmarshal(data, &back); err != nil {
		t.Fatalf("Dump() produced invalid yaml: %v", err)
	}
	if !slices.Equal(back.Document.SplitTags, cfg.Document.SplitTags) {
		t.Errorf("SplitTags after round trip = %v, want %v", back.Document.SplitTags, cfg.Document.SplitTags)
	}
}

func TestCleanFileName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"course", "course"},
		{"..hidden", "hidden"},
		{"", "_bad_file_name_"},
		{"a" + string(os.PathSeparator) + "b", "ab"},
		{"tab\there", "tabhere"},
	}
	for _, tt := range tests {
		if got := CleanFileName(tt.in); got != tt.want {
			t.Errorf("CleanFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
