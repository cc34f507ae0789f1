package cli

import "fmt"

func Run(args []string) error {
	if len(args) == 0 {
		printRootUsage()
		return nil
	}

	switch args[0] {
	case "run":
		return runRun(args[1:])
	case "rebuild":
		return runRebuild(args[1:])
	case "status":
		return runStatus(args[1:])
	case "browse":
		return runBrowse(args[1:])
	case "doctor":
		return runDoctor(args[1:])
	case "help", "-h", "--help":
		printRootUsage()
		return nil
	default:
		printRootUsage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func printRootUsage() {
	fmt.Println("yt-transcriber: channel-wide YouTube transcript fetcher")
	fmt.Println()
	fmt.Println("Quick Start:")
	fmt.Println("  yt-transcriber doctor")
	fmt.Println("  yt-transcriber run --channel <url>")
	fmt.Println("  yt-transcriber status")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  run      fetch transcripts for every video of a channel")
	fmt.Println("  rebuild  regenerate the merged transcript file for a channel dir")
	fmt.Println("  status   per-channel rollup of manifest and transcript files")
	fmt.Println("  browse   interactive browser over channels and their videos")
	fmt.Println("  doctor   run dependency and filesystem preflight checks")
	fmt.Println()
	fmt.Println("Notes:")
	fmt.Println("  - Use --json on commands for machine-readable output")
	fmt.Println("  - Reruns are cheap: processed videos are skipped via the manifest")
	fmt.Println("  - Use --skip-whisper when no local speech-to-text is installed")
}
