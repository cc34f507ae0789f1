package transcribe

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"yt-transcriber/internal/model"
	"yt-transcriber/internal/store"
)

const (
	TxtDirName       = "txt"
	CombinedFileName = "all_transcripts.txt"
	subsDirName      = "_subs_raw"
	audioDirName     = "_audio"
	logsDirName      = "logs"
)

// minUsableBytes guards the file-existence skip check against empty or
// truncated leftovers from an interrupted run.
const minUsableBytes = 32

// videoBaseName derives the per-video file stem: "<safe title> [<id>]".
// Only the title is sanitized; the bracketed id suffix keeps names
// collision-free with duplicate titles.
func videoBaseName(title, videoID string) string {
	t := SafeName(title)
	if t == "" {
		t = "video"
	}
	return fmt.Sprintf("%s [%s]", t, videoID)
}

// VideoTxtPath is the per-video transcript location inside a channel dir.
func VideoTxtPath(channelDir, title, videoID string) string {
	return filepath.Join(channelDir, TxtDirName, videoBaseName(title, videoID)+".txt")
}

// hasUsableTxt reports whether a per-video file already holds a transcript.
func hasUsableTxt(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Size() > minUsableBytes
}

// writeTranscript writes the per-video file atomically so --force never
// destroys a previously correct file before its replacement is complete.
func writeTranscript(path string, result model.TranscriptResult) error {
	return store.WriteBytes(path, []byte(strings.TrimSpace(result.Text)+"\n"))
}

// RebuildResult reports what a combined-file rebuild produced.
type RebuildResult struct {
	CombinedPath string `json:"combined_path"`
	Sections     int    `json:"sections"`
}

// RebuildCombined regenerates the merged file purely from the per-video
// files on disk, in sorted filename order. It never consults the manifest,
// so the merged file's correctness does not depend on manifest integrity,
// and running it twice is byte-identical.
func RebuildCombined(channelDir string) (RebuildResult, error) {
	txtDir := filepath.Join(channelDir, TxtDirName)
	combinedPath := filepath.Join(channelDir, CombinedFileName)

	entries, err := os.ReadDir(txtDir)
	if err != nil {
		if os.IsNotExist(err) {
			if err := store.WriteBytes(combinedPath, []byte{}); err != nil {
				return RebuildResult{}, err
			}
			return RebuildResult{CombinedPath: combinedPath}, nil
		}
		return RebuildResult{}, fmt.Errorf("read transcript directory %s: %w", txtDir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		body, err := os.ReadFile(filepath.Join(txtDir, name))
		if err != nil {
			return RebuildResult{}, fmt.Errorf("read transcript %s: %w", name, err)
		}
		stem := strings.TrimSuffix(name, ".txt")
		b.WriteString("# ")
		b.WriteString(stem)
		b.WriteString("\n\n")
		b.WriteString(strings.TrimSpace(string(body)))
		b.WriteString("\n\n")
	}

	if err := store.WriteBytes(combinedPath, []byte(b.String())); err != nil {
		return RebuildResult{}, err
	}
	return RebuildResult{CombinedPath: combinedPath, Sections: len(names)}, nil
}
