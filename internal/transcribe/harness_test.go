package transcribe

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// The run tests drive the real orchestrator against fake yt-dlp and whisper
// binaries on a prepended PATH. The fake yt-dlp serves a listing fixture for
// --flat-playlist, writes a VTT per video for subtitle calls (unless the id
// is listed in FAKE_NO_CAPTIONS), and writes an m4a for audio calls.
const fakeYTDLPScript = `#!/usr/bin/env bash
set -euo pipefail
outdir=""
prev=""
subs=0
audio=0
flat=0
for a in "$@"; do
  case "$a" in
    --flat-playlist) flat=1 ;;
    --write-subs) subs=1 ;;
    -x) audio=1 ;;
  esac
  if [ "$prev" = "-P" ]; then outdir="$a"; fi
  prev="$a"
done
if [ "$flat" = "1" ]; then
  cat "$FAKE_LISTING"
  exit 0
fi
url="${@: -1}"
vid="${url#*v=}"
if [ "$subs" = "1" ]; then
  for missing in ${FAKE_NO_CAPTIONS:-}; do
    if [ "$missing" = "$vid" ]; then exit 0; fi
  done
  cat > "$outdir/video [$vid].en.vtt" <<VTT
WEBVTT

00:00:00.000 --> 00:00:02.000
caption text for $vid with enough characters in it

00:00:02.000 --> 00:00:04.000
and a second caption line to pass the usability threshold
VTT
  exit 0
fi
if [ "$audio" = "1" ]; then
  printf 'fake audio' > "$outdir/video [$vid].m4a"
  exit 0
fi
exit 1
`

const fakeWhisperScript = `#!/usr/bin/env bash
set -euo pipefail
out=""
prev=""
for a in "$@"; do
  if [ "$prev" = "--output_dir" ]; then out="$a"; fi
  prev="$a"
done
audio="${@: -1}"
stem="$(basename "$audio")"
stem="${stem%.*}"
printf 'inferred speech for the captionless video\n' > "$out/$stem.txt"
`

type fakeVideo struct {
	ID    string
	Title string
}

func listingJSON(t *testing.T, uploader string, videos []fakeVideo) string {
	t.Helper()
	entries := make([]map[string]string, 0, len(videos))
	for _, v := range videos {
		entries = append(entries, map[string]string{
			"id":    v.ID,
			"title": v.Title,
			"url":   "https://www.youtube.com/watch?v=" + v.ID,
		})
	}
	doc := map[string]any{
		"id":          "UCfake",
		"title":       uploader + " - Videos",
		"uploader":    uploader,
		"webpage_url": "https://www.youtube.com/@" + uploader,
		"entries":     entries,
	}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

type harness struct {
	outRoot string
}

func newHarness(t *testing.T, uploader string, videos []fakeVideo, noCaptions []string) harness {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake shell binary harness is unix-only")
	}

	tmp := t.TempDir()
	fakeBin := filepath.Join(tmp, "bin")
	if err := os.MkdirAll(fakeBin, 0o755); err != nil {
		t.Fatal(err)
	}
	for name, script := range map[string]string{
		"yt-dlp":              fakeYTDLPScript,
		"whisper-ctranslate2": fakeWhisperScript,
	} {
		if err := os.WriteFile(filepath.Join(fakeBin, name), []byte(script), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	t.Setenv("PATH", fakeBin+":"+os.Getenv("PATH"))

	listingPath := filepath.Join(tmp, "listing.json")
	if err := os.WriteFile(listingPath, []byte(listingJSON(t, uploader, videos)), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FAKE_LISTING", listingPath)
	t.Setenv("FAKE_NO_CAPTIONS", strings.Join(noCaptions, " "))

	return harness{outRoot: filepath.Join(tmp, "out")}
}

func (h harness) runOptions() RunOptions {
	return RunOptions{
		ChannelURL: "https://www.youtube.com/@example",
		OutRoot:    h.outRoot,
		Quiet:      true,
	}
}

func (h harness) channelDir(uploader string) string {
	return filepath.Join(h.outRoot, uploader)
}

func countTxtFiles(t *testing.T, channelDir string) int {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(channelDir, TxtDirName))
	if err != nil {
		t.Fatalf("read txt dir: %v", err)
	}
	n := 0
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".txt") {
			n++
		}
	}
	return n
}

func readCombined(t *testing.T, channelDir string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(channelDir, CombinedFileName))
	if err != nil {
		t.Fatalf("read combined file: %v", err)
	}
	return string(data)
}

func combinedSections(s string) int {
	n := 0
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(line, "# ") {
			n++
		}
	}
	return n
}

func manifestLines(t *testing.T, channelDir string) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(channelDir, "manifest.jsonl"))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func threeVideos() []fakeVideo {
	videos := make([]fakeVideo, 0, 3)
	for i := 1; i <= 3; i++ {
		videos = append(videos, fakeVideo{
			ID:    fmt.Sprintf("vid%d0000000", i),
			Title: fmt.Sprintf("Episode %d", i),
		})
	}
	return videos
}
