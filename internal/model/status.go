package model

import "fmt"

// Per-video processing outcomes. Every video starts pending; skipped,
// captions_ok and whisper_ok all end in a manifest entry with status done,
// failed ends in status failed.
const (
	StatusPending    = "pending"
	StatusSkipped    = "skipped"
	StatusCaptionsOK = "captions_ok"
	StatusWhisperOK  = "whisper_ok"
	StatusFailed     = "failed"
)

var allowedTransitions = map[string]map[string]bool{
	"": {
		StatusPending: true,
	},
	StatusPending: {
		StatusSkipped:    true,
		StatusCaptionsOK: true,
		StatusWhisperOK:  true,
		StatusFailed:     true,
	},
	StatusSkipped:    {},
	StatusCaptionsOK: {},
	StatusWhisperOK:  {},
	StatusFailed:     {},
}

func CanTransition(from, to string) bool {
	next, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return next[to]
}

// Outcome tracks one video through the run.
type Outcome struct {
	VideoID string
	Status  string
	Reason  string
}

func (o *Outcome) Transition(toStatus, reason string) error {
	if !CanTransition(o.Status, toStatus) {
		return fmt.Errorf("invalid video status transition: %q -> %q (video_id=%s)", o.Status, toStatus, o.VideoID)
	}
	o.Status = toStatus
	o.Reason = reason
	return nil
}

// EntryStatus maps a terminal outcome to its manifest status.
func EntryStatus(status string) string {
	if status == StatusFailed {
		return EntryFailed
	}
	return EntryDone
}
