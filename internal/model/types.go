package model

// VideoRecord is one entry of a channel listing, in listing order.
type VideoRecord struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// TranscriptResult is the text produced for a single video. It only lives
// for the duration of one processing step before being written to disk.
type TranscriptResult struct {
	VideoID string
	Title   string
	Text    string
	Source  string
}

const (
	SourceCaptions = "captions"
	SourceWhisper  = "whisper"
)

// ManifestEntry is one JSON object per line of manifest.jsonl. The set of
// IDs with status done is the sole resume-decision state.
type ManifestEntry struct {
	VideoID   string `json:"video_id"`
	Title     string `json:"title"`
	URL       string `json:"url,omitempty"`
	Status    string `json:"status"`
	Source    string `json:"source,omitempty"`
	Path      string `json:"path,omitempty"`
	Timestamp string `json:"timestamp"`
}

const (
	EntryDone   = "done"
	EntryFailed = "failed"
)

// Done reports whether the entry marks its video as processed. Manifests
// written by older versions of the tool carry no status field; those lines
// were only ever appended on success, so an empty status counts as done.
func (e ManifestEntry) Done() bool {
	return e.Status == EntryDone || e.Status == ""
}
