package transcribe

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"yt-transcriber/internal/model"
	"yt-transcriber/internal/store"
)

func TestStatus_Rollup(t *testing.T) {
	outRoot := t.TempDir()

	channelDir := filepath.Join(outRoot, "creator")
	txtDir := filepath.Join(channelDir, TxtDirName)
	if err := os.MkdirAll(txtDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(txtDir, "a [vid10000000].txt"), []byte("body\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	manifest, err := store.LoadManifest(filepath.Join(channelDir, store.ManifestFileName))
	if err != nil {
		t.Fatal(err)
	}
	entries := []model.ManifestEntry{
		{VideoID: "vid10000000", Status: model.EntryDone, Source: model.SourceCaptions},
		{VideoID: "vid20000000", Status: model.EntryFailed},
		{VideoID: "vid30000000", Status: model.EntryFailed},
		{VideoID: "vid30000000", Status: model.EntryDone, Source: model.SourceWhisper},
	}
	for _, e := range entries {
		if err := manifest.Append(e); err != nil {
			t.Fatal(err)
		}
	}

	// Unrelated directories under the root are not channels.
	if err := os.MkdirAll(filepath.Join(outRoot, "scratch"), 0o755); err != nil {
		t.Fatal(err)
	}

	res, err := Status(outRoot)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if len(res.Rows) != 1 {
		t.Fatalf("expected 1 channel row, got %d", len(res.Rows))
	}
	row := res.Rows[0]
	if row.Channel != "creator" {
		t.Fatalf("channel = %q", row.Channel)
	}
	if row.Entries != 4 || row.Done != 2 || row.Failed != 1 || row.TxtFiles != 1 {
		t.Fatalf("unexpected rollup: %+v", row)
	}
	if row.Captions != 1 || row.Whisper != 1 {
		t.Fatalf("unexpected source counts: %+v", row)
	}
	if row.CombinedPath != "" {
		t.Fatalf("combined should be unset before a rebuild, got %q", row.CombinedPath)
	}
}

func TestStatus_MissingRootIsEmpty(t *testing.T) {
	res, err := Status(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if len(res.Rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(res.Rows))
	}
}

func TestDoctor_SkipWhisperOnlyNeedsYTDLP(t *testing.T) {
	h := newHarness(t, "example", threeVideos(), nil)

	res := Doctor(DoctorOptions{OutRoot: h.outRoot, SkipWhisper: true})
	if !res.OK {
		t.Fatalf("doctor should pass with yt-dlp on PATH: %+v", res.Checks)
	}
	for _, c := range res.Checks {
		if strings.Contains(c.Name, "whisper") || strings.Contains(c.Name, "ffmpeg") {
			t.Fatalf("skip-whisper doctor must not check %s", c.Name)
		}
	}
}

func TestDoctor_ReportsWhisperToolchain(t *testing.T) {
	h := newHarness(t, "example", threeVideos(), nil)

	res := Doctor(DoctorOptions{OutRoot: h.outRoot})
	found := false
	for _, c := range res.Checks {
		if c.Name == "dependency:whisper-ctranslate2" {
			found = true
			if !c.OK {
				t.Fatalf("fake whisper binary should be detected: %s", c.Message)
			}
		}
	}
	if !found {
		t.Fatalf("whisper check missing: %+v", res.Checks)
	}
}
