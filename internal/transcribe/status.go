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

// ChannelStatus is the per-channel rollup shown by the status command.
type ChannelStatus struct {
	Channel      string `json:"channel"`
	Dir          string `json:"dir"`
	Entries      int    `json:"entries"`
	Done         int    `json:"done"`
	Captions     int    `json:"captions"`
	Whisper      int    `json:"whisper"`
	Failed       int    `json:"failed"`
	TxtFiles     int    `json:"txt_files"`
	CombinedPath string `json:"combined_path,omitempty"`
}

type StatusResult struct {
	OutRoot string          `json:"out_root"`
	Rows    []ChannelStatus `json:"rows"`
}

// Status walks the output root and summarizes every channel directory it
// finds. A directory counts as a channel when it carries a manifest or a
// transcript directory; anything else under the root is left alone.
func Status(outRoot string) (StatusResult, error) {
	root := strings.TrimSpace(outRoot)
	if root == "" {
		root = "."
	}
	result := StatusResult{OutRoot: root}

	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		return result, fmt.Errorf("read output root %s: %w", root, err)
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(root, e.Name())
		row, ok, err := channelRow(e.Name(), dir)
		if err != nil {
			return result, err
		}
		if ok {
			result.Rows = append(result.Rows, row)
		}
	}
	sort.Slice(result.Rows, func(i, j int) bool {
		return result.Rows[i].Channel < result.Rows[j].Channel
	})
	return result, nil
}

func channelRow(name, dir string) (ChannelStatus, bool, error) {
	manifestPath := filepath.Join(dir, store.ManifestFileName)
	txtDir := filepath.Join(dir, TxtDirName)

	_, manifestErr := os.Stat(manifestPath)
	_, txtErr := os.Stat(txtDir)
	if manifestErr != nil && txtErr != nil {
		return ChannelStatus{}, false, nil
	}

	row := ChannelStatus{Channel: name, Dir: dir}

	manifest, err := store.LoadManifest(manifestPath)
	if err != nil {
		return ChannelStatus{}, false, err
	}
	row.Entries = manifest.Len()
	row.Done = manifest.DoneCount()

	// Duplicate ids are last-wins; a failed line only counts while no line
	// at all resolved the video.
	latest := map[string]model.ManifestEntry{}
	for _, entry := range manifest.Entries() {
		latest[entry.VideoID] = entry
	}
	for id, entry := range latest {
		if entry.Done() {
			switch entry.Source {
			case model.SourceCaptions:
				row.Captions++
			case model.SourceWhisper:
				row.Whisper++
			}
			continue
		}
		if !manifest.HasProcessed(id) {
			row.Failed++
		}
	}

	if txtEntries, err := os.ReadDir(txtDir); err == nil {
		for _, t := range txtEntries {
			if !t.IsDir() && strings.HasSuffix(t.Name(), ".txt") {
				row.TxtFiles++
			}
		}
	}
	if combined := filepath.Join(dir, CombinedFileName); fileExists(combined) {
		row.CombinedPath = combined
	}
	return row, true, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
