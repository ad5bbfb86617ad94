package convert

import (
	"strings"
	"testing"
	"time"

	"doc2scorm/config"
)

var templateDate = time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)

func TestExpandTemplate(t *testing.T) {
	tests := []struct {
		name  string
		field string
		want  string
	}{
		{name: "simple text", field: "simple-text", want: "simple-text"},
		{name: "title", field: "{{ .Title }}", want: "Safety Basics"},
		{name: "source file", field: "{{ .SourceFile }}", want: "handbook"},
		{name: "date", field: "{{ .Date }}", want: "2024-03-05"},
		{name: "context", field: "{{ .Context }}", want: string(config.OutputNameTemplateFieldName)},
		{name: "sprig", field: `{{ .Title | lower | replace " " "_" }}`, want: "safety_basics"},
		{name: "combined", field: "{{ .Date }}/{{ .SourceFile }}", want: "2024-03-05/handbook"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandTemplate(config.OutputNameTemplateFieldName, tt.field, "Safety Basics", "/in/handbook.docx", templateDate)
			if err != nil {
				t.Fatalf("expandTemplate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("expandTemplate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExpandTemplate_Errors(t *testing.T) {
	_, err := expandTemplate(config.OutputNameTemplateFieldName, "{{ .Title", "t", "a.html", templateDate)
	if err == nil || !strings.Contains(err.Error(), "unable to parse template field") {
		t.Errorf("parse error = %v", err)
	}

	if _, err := expandTemplate(config.OutputNameTemplateFieldName, "{{ .Missing }}", "t", "a.html", templateDate); err == nil {
		t.Error("expected execution error for unknown field")
	}
}
