package cli

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"yt-transcriber/internal/transcribe"
)

func runRun(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	channel := fs.String("channel", "", "channel or playlist URL")
	outRoot := fs.String("out-root", ".", "root directory for channel output directories")
	langs := fs.String("langs", "en,en-US", "subtitle language preference, comma-separated")
	skipWhisper := fs.Bool("skip-whisper", false, "never fall back to local speech-to-text")
	force := fs.Bool("force", false, "reprocess videos that already have a transcript")
	limit := fs.Int("limit", 0, "max videos to process this invocation (0 = no limit)")
	ffmpeg := fs.String("ffmpeg", "", "directory containing the ffmpeg binary (optional)")
	whisperModel := fs.String("model", "", "whisper model: small|medium|large-v3 (default: medium)")
	device := fs.String("device", "", "whisper device: auto|cpu|cuda (default: auto)")
	computeType := fs.String("compute-type", "", "whisper compute type: auto|int8|float16|float32 (default: auto)")
	rebuildOnly := fs.Bool("rebuild-combined", false, "only regenerate the merged file, process nothing")
	progress := fs.Bool("progress", true, "show live progress renderer")
	quiet := fs.Bool("quiet", false, "suppress per-video output lines")
	jsonOut := fs.Bool("json", false, "print JSON output")

	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	if strings.TrimSpace(*channel) == "" {
		fs.Usage()
		return errors.New("--channel is required")
	}

	if *rebuildOnly {
		return rebuildForChannel(strings.TrimSpace(*channel), strings.TrimSpace(*outRoot), strings.TrimSpace(*ffmpeg), *jsonOut)
	}

	result, err := transcribe.Run(transcribe.RunOptions{
		ChannelURL:     strings.TrimSpace(*channel),
		OutRoot:        strings.TrimSpace(*outRoot),
		Languages:      splitLangs(*langs),
		SkipWhisper:    *skipWhisper,
		Force:          *force,
		Limit:          *limit,
		FFmpegLocation: strings.TrimSpace(*ffmpeg),
		Model:          strings.TrimSpace(*whisperModel),
		Device:         strings.TrimSpace(*device),
		ComputeType:    strings.TrimSpace(*computeType),
		Progress:       *progress,
		Quiet:          *quiet || *jsonOut,
	})
	if err != nil {
		return err
	}

	if *jsonOut {
		return printJSON(result)
	}
	fmt.Println("run summary")
	fmt.Printf("channel: %s\n", defaultIfEmpty(result.ChannelTitle, "(unknown)"))
	fmt.Printf("channel_dir: %s\n", result.ChannelDir)
	fmt.Printf("manifest: %s\n", result.ManifestPath)
	fmt.Printf("combined: %s\n", result.CombinedPath)
	fmt.Printf("total: %d\n", result.Total)
	fmt.Printf("skipped: %d\n", result.Skipped)
	fmt.Printf("captions: %d\n", result.Captions)
	fmt.Printf("whisper: %d\n", result.Whisper)
	fmt.Printf("failed: %d\n", result.Failed)
	if result.Failed > 0 {
		fmt.Println("next: rerun the same command to retry failed videos")
	}
	return nil
}

// rebuildForChannel resolves the channel directory the same way a full run
// would, then only regenerates the merged file.
func rebuildForChannel(channelURL, outRoot, ffmpegLocation string, jsonOut bool) error {
	ch, err := transcribe.ListChannel(channelURL, ffmpegLocation)
	if err != nil {
		return err
	}
	dir := joinOutRoot(outRoot, ch.DirName())
	res, err := transcribe.RebuildCombined(dir)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(res)
	}
	fmt.Printf("combined: %s\n", res.CombinedPath)
	fmt.Printf("sections: %d\n", res.Sections)
	return nil
}

func splitLangs(raw string) []string {
	parts := strings.Split(raw, ",")
	langs := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			langs = append(langs, v)
		}
	}
	return langs
}
