package transcribe

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"yt-transcriber/internal/model"
	"yt-transcriber/internal/store"
	"yt-transcriber/internal/vtt"
	"yt-transcriber/internal/whisper"
	"yt-transcriber/internal/ytdlp"
)

// minCaptionChars is the usability threshold for a caption track: anything
// shorter is treated as "no captions" and falls through to whisper.
const minCaptionChars = 50

type RunOptions struct {
	ChannelURL     string
	OutRoot        string
	Languages      []string
	SkipWhisper    bool
	Force          bool
	Limit          int
	FFmpegLocation string
	Model          string
	Device         string
	ComputeType    string
	Progress       bool
	Quiet          bool
}

type VideoReport struct {
	VideoID string `json:"video_id"`
	Title   string `json:"title"`
	Status  string `json:"status"`
	Reason  string `json:"reason,omitempty"`
}

type RunResult struct {
	ChannelTitle string        `json:"channel_title,omitempty"`
	ChannelDir   string        `json:"channel_dir"`
	ManifestPath string        `json:"manifest_path"`
	CombinedPath string        `json:"combined_path"`
	Total        int           `json:"total"`
	Skipped      int           `json:"skipped"`
	Captions     int           `json:"captions"`
	Whisper      int           `json:"whisper"`
	Failed       int           `json:"failed"`
	Videos       []VideoReport `json:"videos"`
}

// Run drives the whole per-channel loop: list, skip already-done work,
// fetch captions, fall back to whisper, write outputs, append the manifest.
// Only the channel listing is fatal; every per-video failure is isolated.
func Run(opts RunOptions) (RunResult, error) {
	if err := ytdlp.CheckDependencies(); err != nil {
		return RunResult{}, err
	}
	whisperModel, err := whisper.CheckModel(opts.Model)
	if err != nil {
		return RunResult{}, err
	}
	whisperDevice, err := whisper.CheckDevice(opts.Device)
	if err != nil {
		return RunResult{}, err
	}
	whisperCompute, err := whisper.CheckComputeType(opts.ComputeType)
	if err != nil {
		return RunResult{}, err
	}

	ch, err := ListChannel(opts.ChannelURL, opts.FFmpegLocation)
	if err != nil {
		return RunResult{}, err
	}
	videos := ch.Videos
	if opts.Limit > 0 && len(videos) > opts.Limit {
		videos = videos[:opts.Limit]
	}
	if len(videos) == 0 {
		return RunResult{}, fmt.Errorf("no videos found for %s", opts.ChannelURL)
	}

	outRoot := strings.TrimSpace(opts.OutRoot)
	if outRoot == "" {
		outRoot = "."
	}
	channelDir := filepath.Join(outRoot, ch.DirName())
	subsDir := filepath.Join(channelDir, subsDirName)
	audioDir := filepath.Join(channelDir, audioDirName)
	txtDir := filepath.Join(channelDir, TxtDirName)
	logsDir := filepath.Join(channelDir, logsDirName)
	for _, d := range []string{subsDir, audioDir, txtDir, logsDir} {
		if err := store.Mkdir(d); err != nil {
			return RunResult{}, err
		}
	}

	lock, err := store.AcquireChannelLock(channelDir)
	if err != nil {
		return RunResult{}, err
	}
	defer func() {
		_ = lock.Release()
	}()

	manifestPath := filepath.Join(channelDir, store.ManifestFileName)
	manifest, err := store.LoadManifest(manifestPath)
	if err != nil {
		return RunResult{}, err
	}

	result := RunResult{
		ChannelTitle: ch.Title,
		ChannelDir:   channelDir,
		ManifestPath: manifestPath,
		CombinedPath: filepath.Join(channelDir, CombinedFileName),
		Total:        len(videos),
		Videos:       make([]VideoReport, 0, len(videos)),
	}

	progressEnabled := opts.Progress && !opts.Quiet
	for i, video := range videos {
		outcome := model.Outcome{VideoID: video.ID, Status: model.StatusPending}
		txtPath := VideoTxtPath(channelDir, video.Title, video.ID)

		if !opts.Force && (manifest.HasProcessed(video.ID) || hasUsableTxt(txtPath)) {
			if err := outcome.Transition(model.StatusSkipped, "already processed"); err != nil {
				return result, err
			}
			// The manifest is authoritative; an on-disk transcript the
			// manifest does not know about gets a reconciling entry so the
			// next run skips it on the manifest alone.
			if !manifest.HasProcessed(video.ID) {
				if err := manifest.Append(manifestEntry(video, outcome, "", txtPath)); err != nil {
					return result, err
				}
			}
			result.Skipped++
			result.Videos = append(result.Videos, report(video, outcome))
			if !opts.Quiet && !progressEnabled {
				fmt.Printf("[%d/%d] skip  %s\n", i+1, len(videos), video.ID)
			}
			continue
		}

		progress := newLiveProgress(
			progressEnabled,
			i+1,
			len(videos),
			result.Captions+result.Whisper,
			result.Failed,
			video.ID,
			video.Title,
		)
		progress.Start()
		if !opts.Quiet && !progressEnabled {
			fmt.Printf("[%d/%d] start %s\n", i+1, len(videos), video.ID)
		}

		logFile, err := os.Create(filepath.Join(logsDir, fmt.Sprintf("%04d_%s.log", i+1, video.ID)))
		if err != nil {
			return result, fmt.Errorf("create log file for %s: %w", video.ID, err)
		}

		transcript, procErr := processVideo(processContext{
			video:          video,
			subsDir:        subsDir,
			audioDir:       audioDir,
			languages:      opts.Languages,
			skipWhisper:    opts.SkipWhisper,
			ffmpegLocation: opts.FFmpegLocation,
			model:          whisperModel,
			device:         whisperDevice,
			computeType:    whisperCompute,
			logFile:        logFile,
			progress:       progress,
		})
		if procErr == nil {
			procErr = writeTranscript(txtPath, transcript)
			if procErr != nil {
				procErr = fmt.Errorf("write transcript: %w", procErr)
			}
		}
		_ = logFile.Close()

		if procErr != nil {
			if err := outcome.Transition(model.StatusFailed, procErr.Error()); err != nil {
				return result, err
			}
			if err := manifest.Append(manifestEntry(video, outcome, "", "")); err != nil {
				return result, err
			}
			result.Failed++
			result.Videos = append(result.Videos, report(video, outcome))
			progress.Stop(fmt.Sprintf("[%d/%d] fail  %s", i+1, len(videos), video.ID))
			if !opts.Quiet {
				fmt.Fprintf(os.Stderr, "video %s failed: %v\n", video.ID, procErr)
			}
			continue
		}

		status := model.StatusCaptionsOK
		if transcript.Source == model.SourceWhisper {
			status = model.StatusWhisperOK
			result.Whisper++
		} else {
			result.Captions++
		}
		if err := outcome.Transition(status, ""); err != nil {
			return result, err
		}
		if err := manifest.Append(manifestEntry(video, outcome, transcript.Source, txtPath)); err != nil {
			return result, err
		}
		result.Videos = append(result.Videos, report(video, outcome))
		progress.Stop(fmt.Sprintf("[%d/%d] done  %s (%s)", i+1, len(videos), video.ID, transcript.Source))
		if !opts.Quiet && !progressEnabled {
			fmt.Printf("[%d/%d] done  %s (%s)\n", i+1, len(videos), video.ID, transcript.Source)
		}
	}

	// The merged file is always re-derived from the per-video files, never
	// appended to: that keeps a second run byte-identical and is the same
	// path the standalone rebuild takes.
	if _, err := RebuildCombined(channelDir); err != nil {
		return result, err
	}

	for _, d := range []string{subsDir, audioDir} {
		_ = store.RemoveDirIfEmpty(d)
	}

	return result, nil
}

type processContext struct {
	video          model.VideoRecord
	subsDir        string
	audioDir       string
	languages      []string
	skipWhisper    bool
	ffmpegLocation string
	model          string
	device         string
	computeType    string
	logFile        *os.File
	progress       *liveProgress
}

// processVideo tries captions first and whisper second. A missing caption
// track is expected and silent; only a video that yields no text at all, or
// a transcription/decoder failure, comes back as an error.
func processVideo(ctx processContext) (model.TranscriptResult, error) {
	ctx.progress.SetPhase("captions")
	text, err := fetchCaptions(ctx)
	if err != nil {
		fmt.Fprintf(ctx.logFile, "captions unavailable for %s: %v\n", ctx.video.ID, err)
		text = ""
	}
	if len(text) >= minCaptionChars {
		return model.TranscriptResult{
			VideoID: ctx.video.ID,
			Title:   ctx.video.Title,
			Text:    text,
			Source:  model.SourceCaptions,
		}, nil
	}

	if ctx.skipWhisper {
		if text != "" {
			// Short but real captions are still better than nothing when
			// the fallback is disabled.
			return model.TranscriptResult{
				VideoID: ctx.video.ID,
				Title:   ctx.video.Title,
				Text:    text,
				Source:  model.SourceCaptions,
			}, nil
		}
		return model.TranscriptResult{}, fmt.Errorf("no captions and whisper fallback disabled")
	}

	ctx.progress.SetPhase("audio")
	audioPath, err := downloadAudio(ctx)
	if err != nil {
		return model.TranscriptResult{}, fmt.Errorf("download audio: %w", err)
	}
	defer func() {
		_ = os.Remove(audioPath)
	}()

	ctx.progress.SetPhase("whisper")
	text, err = whisper.Transcribe(whisper.Options{
		AudioPath:   audioPath,
		Model:       ctx.model,
		Device:      ctx.device,
		ComputeType: ctx.computeType,
		WorkDir:     ctx.audioDir,
	})
	if err != nil {
		return model.TranscriptResult{}, fmt.Errorf("transcribe audio: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return model.TranscriptResult{}, fmt.Errorf("transcription produced no text")
	}
	return model.TranscriptResult{
		VideoID: ctx.video.ID,
		Title:   ctx.video.Title,
		Text:    text,
		Source:  model.SourceWhisper,
	}, nil
}

// fetchCaptions downloads the caption track and flattens the largest VTT
// for this video id. No VTT on disk afterwards simply means no captions.
func fetchCaptions(ctx processContext) (string, error) {
	err := ytdlp.DownloadSubtitles(ytdlp.SubtitleOptions{
		VideoURL:       ctx.video.URL,
		OutputDir:      ctx.subsDir,
		Languages:      ctx.languages,
		FFmpegLocation: ctx.ffmpegLocation,
		LogWriter:      ctx.logFile,
		Progress:       ctx.progress.Handle,
	})
	if err != nil {
		return "", err
	}

	vttPath, err := largestMatch(ctx.subsDir, ctx.video.ID, []string{".vtt"})
	if err != nil {
		return "", err
	}
	if vttPath == "" {
		return "", nil
	}
	return vtt.FileToText(vttPath)
}

func downloadAudio(ctx processContext) (string, error) {
	err := ytdlp.DownloadAudio(ytdlp.AudioOptions{
		VideoURL:       ctx.video.URL,
		OutputDir:      ctx.audioDir,
		FFmpegLocation: ctx.ffmpegLocation,
		LogWriter:      ctx.logFile,
		Progress:       ctx.progress.Handle,
	})
	if err != nil {
		return "", err
	}

	audioPath, err := largestMatch(ctx.audioDir, ctx.video.ID, []string{".m4a", ".mp3", ".opus"})
	if err != nil {
		return "", err
	}
	if audioPath == "" {
		return "", fmt.Errorf("no audio file produced for %s", ctx.video.ID)
	}
	return audioPath, nil
}

// largestMatch finds the biggest file in dir whose name contains the video
// id and carries one of the extensions. Auto subs can produce several
// language variants; the largest is the most complete track.
func largestMatch(dir, videoID string, exts []string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read directory %s: %w", dir, err)
	}

	best := ""
	var bestSize int64 = -1
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.Contains(name, "["+videoID+"]") {
			continue
		}
		matched := false
		for _, ext := range exts {
			if strings.HasSuffix(strings.ToLower(name), ext) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.Size() > bestSize {
			best = filepath.Join(dir, name)
			bestSize = info.Size()
		}
	}
	return best, nil
}

func manifestEntry(video model.VideoRecord, outcome model.Outcome, source, txtPath string) model.ManifestEntry {
	entry := model.ManifestEntry{
		VideoID:   video.ID,
		Title:     video.Title,
		URL:       video.URL,
		Status:    model.EntryStatus(outcome.Status),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if entry.Status == model.EntryDone {
		entry.Source = source
		entry.Path = txtPath
	}
	return entry
}

func report(video model.VideoRecord, outcome model.Outcome) VideoReport {
	return VideoReport{
		VideoID: video.ID,
		Title:   video.Title,
		Status:  outcome.Status,
		Reason:  outcome.Reason,
	}
}
