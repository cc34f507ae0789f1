package ytdlp

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

type OutputStream string

const (
	StreamStdout OutputStream = "stdout"
	StreamStderr OutputStream = "stderr"
)

// outputTemplate names downloaded artifacts "<title> [<id>].<ext>" so video
// ids can be recovered from filenames even with duplicate titles. Titles are
// capped at 140 bytes to stay inside filesystem name limits.
const outputTemplate = "%(title).140B [%(id)s].%(ext)s"

type ListOptions struct {
	ChannelURL     string
	FFmpegLocation string
}

type SubtitleOptions struct {
	VideoURL       string
	OutputDir      string
	Languages      []string
	FFmpegLocation string
	LogWriter      io.Writer
	Progress       func(stream OutputStream, line string)
}

type AudioOptions struct {
	VideoURL       string
	OutputDir      string
	FFmpegLocation string
	LogWriter      io.Writer
	Progress       func(stream OutputStream, line string)
}

type DependencyReport struct {
	YTDLPFound  bool   `json:"yt_dlp_found"`
	YTDLPPath   string `json:"yt_dlp_path,omitempty"`
	FFmpegFound bool   `json:"ffmpeg_found"`
	FFmpegPath  string `json:"ffmpeg_path,omitempty"`
}

func DependencyStatus() DependencyReport {
	report := DependencyReport{}
	if path, err := exec.LookPath("yt-dlp"); err == nil {
		report.YTDLPFound = true
		report.YTDLPPath = path
	}
	if path, err := exec.LookPath("ffmpeg"); err == nil {
		report.FFmpegFound = true
		report.FFmpegPath = path
	}
	return report
}

func CheckDependencies() error {
	report := DependencyStatus()
	if !report.YTDLPFound {
		return fmt.Errorf("missing dependency: yt-dlp is not installed or not on PATH")
	}
	return nil
}

// FlatPlaylistJSON lists a channel or playlist without touching any video.
func FlatPlaylistJSON(opts ListOptions) ([]byte, error) {
	if strings.TrimSpace(opts.ChannelURL) == "" {
		return nil, fmt.Errorf("channel URL is required")
	}

	args := []string{"--flat-playlist", "--no-warnings", "-J", opts.ChannelURL}

	cmd := exec.Command("yt-dlp", args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("yt-dlp failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("yt-dlp returned empty output")
	}
	return stdout.Bytes(), nil
}

// DownloadSubtitles fetches existing caption tracks (manual or automatic) as
// WebVTT into the output directory without downloading media.
func DownloadSubtitles(opts SubtitleOptions) error {
	if strings.TrimSpace(opts.VideoURL) == "" {
		return fmt.Errorf("video URL is required")
	}
	if strings.TrimSpace(opts.OutputDir) == "" {
		return fmt.Errorf("output directory is required")
	}

	args := []string{
		"--no-playlist",
		"--skip-download",
		"--newline",
		"--no-warnings",
		"-P", opts.OutputDir,
		"-o", outputTemplate,
		"--write-subs",
		"--write-auto-subs",
		"--sub-langs", normalizeSubLangs(opts.Languages),
		"--convert-subs", "vtt",
	}
	args = appendFFmpegLocation(args, opts.FFmpegLocation)
	args = append(args, opts.VideoURL)

	return runCommand(args, opts.LogWriter, opts.Progress)
}

// DownloadAudio fetches the best audio stream and extracts it to mono m4a,
// the smallest input the speech-to-text model accepts without quality loss.
func DownloadAudio(opts AudioOptions) error {
	if strings.TrimSpace(opts.VideoURL) == "" {
		return fmt.Errorf("video URL is required")
	}
	if strings.TrimSpace(opts.OutputDir) == "" {
		return fmt.Errorf("output directory is required")
	}

	args := []string{
		"--no-playlist",
		"--newline",
		"--no-warnings",
		"-P", opts.OutputDir,
		"-o", outputTemplate,
		"-f", "bestaudio/best",
		"-x",
		"--audio-format", "m4a",
		"--audio-quality", "192K",
		"--postprocessor-args", "ffmpeg:-ac 1",
	}
	args = appendFFmpegLocation(args, opts.FFmpegLocation)
	args = append(args, opts.VideoURL)

	return runCommand(args, opts.LogWriter, opts.Progress)
}

func normalizeSubLangs(langs []string) string {
	cleaned := make([]string, 0, len(langs))
	for _, l := range langs {
		l = strings.TrimSpace(l)
		if l != "" {
			cleaned = append(cleaned, l)
		}
	}
	if len(cleaned) == 0 {
		return "en.*,en,-live_chat"
	}
	return strings.Join(cleaned, ",")
}

func appendFFmpegLocation(args []string, location string) []string {
	if strings.TrimSpace(location) == "" {
		return args
	}
	return append(args, "--ffmpeg-location", strings.TrimSpace(location))
}

func runCommand(args []string, logWriter io.Writer, progress func(OutputStream, string)) error {
	cmd := exec.Command("yt-dlp", args...)

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("setup stdout pipe: %w", err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("setup stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start yt-dlp: %w", err)
	}

	var outBuf strings.Builder
	var errBuf strings.Builder
	var mu sync.Mutex
	var wg sync.WaitGroup

	read := func(stream OutputStream, r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		buf := make([]byte, 0, 64*1024)
		scanner.Buffer(buf, 1024*1024)
		scanner.Split(splitByNewlineOrCR)
		for scanner.Scan() {
			line := scanner.Text()
			mu.Lock()
			appendLimited(&outBuf, &errBuf, stream, line)
			if logWriter != nil {
				_, _ = io.WriteString(logWriter, line+"\n")
			}
			mu.Unlock()

			if progress != nil {
				progress(stream, line)
			}
		}
	}

	wg.Add(2)
	go read(StreamStdout, stdoutPipe)
	go read(StreamStderr, stderrPipe)
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		mu.Lock()
		defer mu.Unlock()
		return fmt.Errorf("yt-dlp failed: %w\n%s\n%s", err, strings.TrimSpace(errBuf.String()), strings.TrimSpace(outBuf.String()))
	}
	return nil
}

// yt-dlp rewrites progress lines with bare carriage returns.
func splitByNewlineOrCR(data []byte, atEOF bool) (advance int, token []byte, err error) {
	for i := 0; i < len(data); i++ {
		if data[i] == '\n' || data[i] == '\r' {
			if i == 0 {
				return 1, nil, nil
			}
			return i + 1, data[:i], nil
		}
	}
	if atEOF && len(data) > 0 {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func appendLimited(outBuf, errBuf *strings.Builder, stream OutputStream, line string) {
	const maxKeep = 8192
	b := outBuf
	if stream == StreamStderr {
		b = errBuf
	}
	if b.Len() >= maxKeep {
		return
	}
	toWrite := line + "\n"
	remain := maxKeep - b.Len()
	if len(toWrite) > remain {
		toWrite = toWrite[:remain]
	}
	b.WriteString(toWrite)
}
