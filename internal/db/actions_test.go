package db

import (
	"bytes"
	"strings"
	"testing"
	"time"

	dbpkg "github.com/dtnitsch/mooc-renderer/pkg/db"
)

func TestPrintRuns(t *testing.T) {
	var buf bytes.Buffer
	printRuns(&buf, nil)
	if !strings.Contains(buf.String(), "No runs found") {
		t.Errorf("printRuns(nil) = %q", buf.String())
	}

	buf.Reset()
	printRuns(&buf, []dbpkg.Run{
		{RunID: 7, Root: "MOOC:Kurs", CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), PageCount: 4, SuccessCount: 3, FailedCount: 1, OutputDir: "out"},
	})
	out := buf.String()
	for _, want := range []string{"MOOC:Kurs", "2026-01-02 03:04:05", "Total: 1 runs"} {
		if !strings.Contains(out, want) {
			t.Errorf("printRuns() output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintRun(t *testing.T) {
	run := &dbpkg.Run{RunID: 2, Root: "Kurs", PageCount: 2, SuccessCount: 1, FailedCount: 1}
	results := []dbpkg.RunResult{
		{Title: "Kurs", Status: "success", FilePath: "out/kurs.html", SizeBytes: 10, TopKeywords: map[string]int{"netz": 2, "paket": 1}},
		{Title: "Kurs/a", Status: "error", ErrorType: "malformed_content", ErrorMessage: "bad"},
	}

	tests := []struct {
		name       string
		failedOnly bool
		want       []string
		notWant    []string
	}{
		{
			name: "all",
			want: []string{"Run 2", "[success] Kurs", "Keywords: netz, paket", "[error] Kurs/a", "Error: [malformed_content] bad"},
		},
		{
			name:       "failed only",
			failedOnly: true,
			want:       []string{" 1. [error] Kurs/a"},
			notWant:    []string{"[success] Kurs"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printRun(&buf, run, results, tt.failedOnly)
			out := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
			for _, notWant := range tt.notWant {
				if strings.Contains(out, notWant) {
					t.Errorf("output should not contain %q:\n%s", notWant, out)
				}
			}
		})
	}
}
