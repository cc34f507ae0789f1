package cli

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"yt-transcriber/internal/transcribe"
)

func runRebuild(args []string) error {
	fs := flag.NewFlagSet("rebuild", flag.ContinueOnError)
	dir := fs.String("dir", "", "channel directory (the one holding txt/ and manifest.jsonl)")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	if strings.TrimSpace(*dir) == "" {
		fs.Usage()
		return errors.New("--dir is required")
	}

	res, err := transcribe.RebuildCombined(strings.TrimSpace(*dir))
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(res)
	}
	fmt.Printf("combined: %s\n", res.CombinedPath)
	fmt.Printf("sections: %d\n", res.Sections)
	return nil
}

func runStatus(args []string) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	outRoot := fs.String("out-root", ".", "root directory for channel output directories")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	res, err := transcribe.Status(strings.TrimSpace(*outRoot))
	if err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(res)
	}

	if len(res.Rows) == 0 {
		fmt.Println("no channel directories found")
		fmt.Println("start here:")
		fmt.Println("  yt-transcriber run --channel <url>")
		return nil
	}
	for _, row := range res.Rows {
		fmt.Printf("%s\n", row.Channel)
		fmt.Printf("  dir: %s\n", row.Dir)
		fmt.Printf("  done: %d (captions %d, whisper %d)\n", row.Done, row.Captions, row.Whisper)
		fmt.Printf("  failed: %d\n", row.Failed)
		fmt.Printf("  txt_files: %d\n", row.TxtFiles)
		if row.CombinedPath != "" {
			fmt.Printf("  combined: %s\n", row.CombinedPath)
		}
	}
	return nil
}

func runDoctor(args []string) error {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	outRoot := fs.String("out-root", ".", "root directory for channel output directories")
	skipWhisper := fs.Bool("skip-whisper", false, "do not require the speech-to-text toolchain")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	res := transcribe.Doctor(transcribe.DoctorOptions{
		OutRoot:     strings.TrimSpace(*outRoot),
		SkipWhisper: *skipWhisper,
	})
	if *jsonOut {
		return printJSON(res)
	}

	for _, c := range res.Checks {
		status := "ok"
		if !c.OK {
			status = "fail"
		}
		fmt.Printf("%s: %s (%s)\n", c.Name, status, c.Message)
	}
	if !res.OK {
		return errors.New("doctor checks failed")
	}
	fmt.Println("doctor: all checks passed")
	return nil
}
