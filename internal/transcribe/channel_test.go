package transcribe

import (
	"strings"
	"testing"

	"yt-transcriber/internal/model"
)

func TestSafeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"plain title", "plain title"},
		{"  padded  ", "padded"},
		{"slash/and\\colon: gone", "slash_and_colon_ gone"},
		{"emoji \U0001F680 launch", "emoji _ launch"},
		{"trailing dots...", "trailing dots"},
		{"", ""},
		{strings.Repeat("a", 120), strings.Repeat("a", 80)},
	}
	for _, tc := range cases {
		if got := SafeName(tc.in); got != tc.want {
			t.Errorf("SafeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestChannelDirName(t *testing.T) {
	cases := []struct {
		name string
		ch   Channel
		want string
	}{
		{"uploader wins", Channel{Uploader: "Some Creator", ID: "UCabc"}, "Some Creator"},
		{"falls back to id", Channel{ID: "UCabc123"}, "UCabc123"},
		{"falls back to url segment", Channel{URL: "https://www.youtube.com/@handle/videos"}, "videos"},
		{"last resort", Channel{}, "channel"},
		{"uploader is sanitized", Channel{Uploader: "A/B: testing"}, "A_B_ testing"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.ch.DirName(); got != tc.want {
				t.Fatalf("DirName() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestResolveVideoURL(t *testing.T) {
	cases := []struct {
		id   string
		url  string
		want string
	}{
		{"abc123def45", "", "https://www.youtube.com/watch?v=abc123def45"},
		{"abc123def45", "https://www.youtube.com/watch?v=abc123def45", "https://www.youtube.com/watch?v=abc123def45"},
		{"abc123def45", "watch?v=abc123def45", "https://www.youtube.com/watch?v=abc123def45"},
		{"abc123def45", "/watch?v=abc123def45", "https://www.youtube.com/watch?v=abc123def45"},
		{"abc123def45", "not-a-url", "https://www.youtube.com/watch?v=abc123def45"},
		{"", "", ""},
	}
	for _, tc := range cases {
		if got := resolveVideoURL(tc.id, tc.url); got != tc.want {
			t.Errorf("resolveVideoURL(%q, %q) = %q, want %q", tc.id, tc.url, got, tc.want)
		}
	}
}

func TestListChannel_ParsesFlatPlaylist(t *testing.T) {
	videos := []fakeVideo{
		{ID: "vid10000000", Title: "First"},
		{ID: "vid20000000", Title: "Second"},
	}
	newHarness(t, "creator", videos, nil)

	ch, err := ListChannel("https://www.youtube.com/@creator", "")
	if err != nil {
		t.Fatalf("list channel: %v", err)
	}
	if ch.Uploader != "creator" {
		t.Fatalf("uploader = %q", ch.Uploader)
	}
	if ch.DirName() != "creator" {
		t.Fatalf("dir name = %q", ch.DirName())
	}
	if len(ch.Videos) != 2 {
		t.Fatalf("expected 2 videos, got %d", len(ch.Videos))
	}
	want := model.VideoRecord{
		ID:    "vid10000000",
		Title: "First",
		URL:   "https://www.youtube.com/watch?v=vid10000000",
	}
	if ch.Videos[0] != want {
		t.Fatalf("first video = %+v, want %+v", ch.Videos[0], want)
	}
}
