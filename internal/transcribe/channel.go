package transcribe

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"yt-transcriber/internal/model"
	"yt-transcriber/internal/ytdlp"
)

// Channel is the listing result: ordered video records plus the metadata
// used to derive the channel's output directory.
type Channel struct {
	ID       string
	Title    string
	Uploader string
	URL      string
	Videos   []model.VideoRecord
}

type flatCollection struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Uploader   string      `json:"uploader"`
	Channel    string      `json:"channel"`
	UploaderID string      `json:"uploader_id"`
	WebpageURL string      `json:"webpage_url"`
	Entries    []flatEntry `json:"entries"`
}

type flatEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ListChannel enumerates a channel without downloading anything. A failure
// here is the only fatal error of a run.
func ListChannel(channelURL, ffmpegLocation string) (Channel, error) {
	raw, err := ytdlp.FlatPlaylistJSON(ytdlp.ListOptions{
		ChannelURL:     channelURL,
		FFmpegLocation: ffmpegLocation,
	})
	if err != nil {
		return Channel{}, fmt.Errorf("list channel %s: %w", channelURL, err)
	}

	var c flatCollection
	if err := json.Unmarshal(raw, &c); err != nil {
		return Channel{}, fmt.Errorf("parse channel listing for %s: %w", channelURL, err)
	}

	videos := make([]model.VideoRecord, 0, len(c.Entries))
	for _, e := range c.Entries {
		id := strings.TrimSpace(e.ID)
		videoURL := resolveVideoURL(id, strings.TrimSpace(e.URL))
		if id == "" || videoURL == "" {
			continue
		}
		videos = append(videos, model.VideoRecord{
			ID:    id,
			Title: strings.TrimSpace(e.Title),
			URL:   videoURL,
		})
	}

	uploader := strings.TrimSpace(c.Uploader)
	if uploader == "" {
		uploader = strings.TrimSpace(c.Channel)
	}
	pageURL := strings.TrimSpace(c.WebpageURL)
	if pageURL == "" {
		pageURL = strings.TrimSpace(channelURL)
	}

	return Channel{
		ID:       strings.TrimSpace(c.ID),
		Title:    strings.TrimSpace(c.Title),
		Uploader: uploader,
		URL:      pageURL,
		Videos:   videos,
	}, nil
}

// DirName picks the channel directory slug: uploader name, then uploader id,
// then the last URL path segment, so reruns land in the same directory no
// matter which channel URL variant was passed.
func (c Channel) DirName() string {
	cand := c.Uploader
	if cand == "" {
		cand = c.ID
	}
	if cand == "" {
		cand = lastURLSegment(c.URL)
	}
	if cand == "" {
		cand = "channel"
	}
	return SafeName(cand)
}

func lastURLSegment(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	path := strings.Trim(u.Path, "/")
	if path == "" {
		return ""
	}
	segments := strings.Split(path, "/")
	return segments[len(segments)-1]
}

func resolveVideoURL(videoID, maybeURL string) string {
	u := strings.TrimSpace(maybeURL)
	if u != "" {
		if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
			return u
		}
		if strings.HasPrefix(u, "watch?") || strings.HasPrefix(u, "/watch?") {
			return "https://www.youtube.com/" + strings.TrimPrefix(u, "/")
		}
	}
	if strings.TrimSpace(videoID) != "" {
		return "https://www.youtube.com/watch?v=" + strings.TrimSpace(videoID)
	}
	return ""
}

var (
	unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9\-._ ]+`)
	repeatedSpaces  = regexp.MustCompile(`\s+`)
)

const maxNameLen = 80

// SafeName maps an arbitrary title to a filesystem-safe name. Deterministic
// so a rerun resolves to the same per-video file.
func SafeName(s string) string {
	s = strings.TrimSpace(s)
	s = unsafeNameChars.ReplaceAllString(s, "_")
	s = strings.TrimSpace(repeatedSpaces.ReplaceAllString(s, " "))
	if len(s) > maxNameLen {
		s = s[:maxNameLen]
	}
	return strings.TrimRight(s, "._- ")
}
