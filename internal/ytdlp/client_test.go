package ytdlp

import "testing"

func TestNormalizeSubLangs(t *testing.T) {
	cases := []struct {
		in   []string
		want string
	}{
		{nil, "en.*,en,-live_chat"},
		{[]string{"", "  "}, "en.*,en,-live_chat"},
		{[]string{"en", "en-US"}, "en,en-US"},
		{[]string{" de ", "", "de-AT"}, "de,de-AT"},
	}
	for _, tc := range cases {
		if got := normalizeSubLangs(tc.in); got != tc.want {
			t.Fatalf("normalizeSubLangs(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFlatPlaylistJSON_RequiresURL(t *testing.T) {
	if _, err := FlatPlaylistJSON(ListOptions{}); err == nil {
		t.Fatalf("expected error for missing channel URL")
	}
}

func TestDownloadSubtitles_RequiresOutputDir(t *testing.T) {
	err := DownloadSubtitles(SubtitleOptions{VideoURL: "https://www.youtube.com/watch?v=abc123def45"})
	if err == nil {
		t.Fatalf("expected error for missing output directory")
	}
}

func TestDownloadAudio_RequiresURL(t *testing.T) {
	if err := DownloadAudio(AudioOptions{OutputDir: t.TempDir()}); err == nil {
		t.Fatalf("expected error for missing video URL")
	}
}
