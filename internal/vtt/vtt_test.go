package vtt

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleVTT = `WEBVTT
Kind: captions
Language: en

00:00:00.160 --> 00:00:02.350
so<00:00:00.480><c> today</c><c> we</c><c> are</c><c> going</c><c> to</c>

00:00:02.350 --> 00:00:04.000
so today we are going to

00:00:04.000 --> 00:00:06.500
talk about resumable downloads

NOTE this should be ignored

00:00:06.500 --> 00:00:08.000
talk about resumable downloads
`

func writeSample(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.en.vtt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseFile_ReadsCuesAndStripsTags(t *testing.T) {
	cues, err := ParseFile(writeSample(t, sampleVTT))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(cues) != 4 {
		t.Fatalf("expected 4 cues, got %d", len(cues))
	}
	if cues[0].Text != "so today we are going to" {
		t.Fatalf("tags not stripped: %q", cues[0].Text)
	}
	if cues[0].Start != 160*time.Millisecond {
		t.Fatalf("unexpected start time: %v", cues[0].Start)
	}
	if cues[2].End != 6500*time.Millisecond {
		t.Fatalf("unexpected end time: %v", cues[2].End)
	}
}

func TestFlatten_CollapsesConsecutiveDuplicates(t *testing.T) {
	text, err := FileToText(writeSample(t, sampleVTT))
	if err != nil {
		t.Fatalf("flatten: %v", err)
	}
	want := "so today we are going to talk about resumable downloads"
	if text != want {
		t.Fatalf("got %q, want %q", text, want)
	}
}

func TestFileToText_EmptyFile(t *testing.T) {
	text, err := FileToText(writeSample(t, "WEBVTT\n"))
	if err != nil {
		t.Fatalf("parse empty: %v", err)
	}
	if text != "" {
		t.Fatalf("expected empty text, got %q", text)
	}
}

func TestParseTimestamp_Invalid(t *testing.T) {
	if _, err := parseTimestamp("99?99"); err == nil {
		t.Fatalf("expected error for malformed timestamp")
	}
}
