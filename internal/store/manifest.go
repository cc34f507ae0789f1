package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"yt-transcriber/internal/model"
)

const ManifestFileName = "manifest.jsonl"

// Manifest is the in-memory view of a channel's append-only manifest.jsonl.
// It is loaded once at the start of a run; the done-ID set is the
// authoritative skip decision for the whole run.
type Manifest struct {
	path    string
	entries []model.ManifestEntry
	done    map[string]bool
}

// LoadManifest reads every line of the manifest. Malformed lines are skipped,
// never fatal: a crash mid-append loses at most the last unflushed line and
// must not make the whole channel unprocessable.
func LoadManifest(path string) (*Manifest, error) {
	m := &Manifest{
		path: path,
		done: make(map[string]bool),
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, fmt.Errorf("open manifest %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var entry model.ManifestEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		if strings.TrimSpace(entry.VideoID) == "" {
			continue
		}
		m.entries = append(m.entries, entry)
		if entry.Done() {
			m.done[entry.VideoID] = true
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	return m, nil
}

// HasProcessed reports whether a video id has a done entry. Failed entries
// do not count: a failed video is retried on the next run.
func (m *Manifest) HasProcessed(videoID string) bool {
	return m.done[videoID]
}

// Append writes one JSON line and updates the in-memory set. Append-only is
// the crash-safety mechanism; duplicate ids under --force are acceptable
// because the in-memory set is what is authoritative during a run.
func (m *Manifest) Append(entry model.ManifestEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal manifest entry for %s: %w", entry.VideoID, err)
	}

	f, err := os.OpenFile(m.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open manifest %s for append: %w", m.path, err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append manifest entry for %s: %w", entry.VideoID, err)
	}

	m.entries = append(m.entries, entry)
	if entry.Done() {
		m.done[entry.VideoID] = true
	}
	return nil
}

// Entries returns the loaded entries in file order, later appends included.
func (m *Manifest) Entries() []model.ManifestEntry {
	return m.entries
}

// Len reports the number of well-formed entries.
func (m *Manifest) Len() int {
	return len(m.entries)
}

// DoneCount reports distinct video ids with a done entry.
func (m *Manifest) DoneCount() int {
	return len(m.done)
}
