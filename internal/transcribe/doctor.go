package transcribe

import (
	"os"
	"strings"

	"yt-transcriber/internal/store"
	"yt-transcriber/internal/whisper"
	"yt-transcriber/internal/ytdlp"
)

type DoctorOptions struct {
	OutRoot     string
	SkipWhisper bool
}

type DoctorResult struct {
	OK     bool          `json:"ok"`
	Checks []DoctorCheck `json:"checks"`
}

type DoctorCheck struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Doctor runs the preflight checks a transcription run depends on. With
// SkipWhisper the speech-to-text toolchain is not required, matching what a
// --skip-whisper run actually needs.
func Doctor(opts DoctorOptions) DoctorResult {
	outRoot := strings.TrimSpace(opts.OutRoot)
	if outRoot == "" {
		outRoot = "."
	}

	checks := make([]DoctorCheck, 0, 4)
	dep := ytdlp.DependencyStatus()
	checks = append(checks, DoctorCheck{
		Name:    "dependency:yt-dlp",
		OK:      dep.YTDLPFound,
		Message: dependencyMessage(dep.YTDLPFound, dep.YTDLPPath, "yt-dlp"),
	})
	if !opts.SkipWhisper {
		checks = append(checks, DoctorCheck{
			Name:    "dependency:ffmpeg",
			OK:      dep.FFmpegFound,
			Message: dependencyMessage(dep.FFmpegFound, dep.FFmpegPath, "ffmpeg"),
		})
		wdep := whisper.DependencyStatus()
		checks = append(checks, DoctorCheck{
			Name:    "dependency:whisper-ctranslate2",
			OK:      wdep.Found,
			Message: dependencyMessage(wdep.Found, wdep.Path, "whisper-ctranslate2"),
		})
	}

	outRootOK, outRootMessage := ensureWritableDir(outRoot)
	checks = append(checks, DoctorCheck{
		Name:    "directory:out-root",
		OK:      outRootOK,
		Message: outRootMessage,
	})

	ok := true
	for _, c := range checks {
		if !c.OK {
			ok = false
			break
		}
	}
	return DoctorResult{OK: ok, Checks: checks}
}

func dependencyMessage(ok bool, path, name string) string {
	if ok {
		return name + " found at " + path
	}
	return name + " not found on PATH"
}

func ensureWritableDir(path string) (bool, string) {
	if strings.TrimSpace(path) == "" {
		return false, "empty path"
	}
	if err := store.Mkdir(path); err != nil {
		return false, err.Error()
	}
	f, err := os.CreateTemp(path, "yt-transcriber-check-*.tmp")
	if err != nil {
		return false, err.Error()
	}
	_ = f.Close()
	_ = os.Remove(f.Name())
	return true, "writable"
}
