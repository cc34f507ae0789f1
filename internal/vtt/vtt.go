package vtt

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Cue is one subtitle block of a WebVTT file.
type Cue struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

var (
	timeLineRe = regexp.MustCompile(`(\d{2}:\d{2}:\d{2}\.\d{3})\s+-->\s+(\d{2}:\d{2}:\d{2}\.\d{3})`)
	tagRe      = regexp.MustCompile(`<[^>]*>`)
	spaceRe    = regexp.MustCompile(`\s+`)
)

// ParseFile reads the cue blocks of a WebVTT file. Header, NOTE and STYLE
// blocks, cue identifiers and formatting tags are dropped.
func ParseFile(path string) ([]Cue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vtt file %s: %w", path, err)
	}
	defer f.Close()

	var cues []Cue
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		m := timeLineRe.FindStringSubmatch(line)
		if len(m) < 3 {
			continue
		}
		start, err1 := parseTimestamp(m[1])
		end, err2 := parseTimestamp(m[2])
		if err1 != nil || err2 != nil {
			continue
		}

		var textLines []string
		for scanner.Scan() {
			textLine := strings.TrimSpace(scanner.Text())
			if textLine == "" {
				break
			}
			clean := strings.TrimSpace(tagRe.ReplaceAllString(textLine, ""))
			if clean != "" {
				textLines = append(textLines, clean)
			}
		}
		if len(textLines) > 0 {
			cues = append(cues, Cue{
				Start: start,
				End:   end,
				Text:  strings.Join(textLines, " "),
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read vtt file %s: %w", path, err)
	}
	return cues, nil
}

// parseTimestamp converts "HH:MM:SS.mmm" to a duration from file start.
func parseTimestamp(s string) (time.Duration, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid vtt timestamp %q", s)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hours in %q", s)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minutes in %q", s)
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid seconds in %q", s)
	}
	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds*float64(time.Second)), nil
}

// Flatten joins cue texts into a single line of prose. Auto-generated
// subtitles repeat the trailing line of each cue in the next one, so
// consecutive duplicates are collapsed.
func Flatten(cues []Cue) string {
	var parts []string
	last := ""
	for _, c := range cues {
		text := spaceRe.ReplaceAllString(strings.TrimSpace(c.Text), " ")
		if text == "" || text == last {
			continue
		}
		parts = append(parts, text)
		last = text
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// FileToText is the composition used by the caption path: parse then flatten.
func FileToText(path string) (string, error) {
	cues, err := ParseFile(path)
	if err != nil {
		return "", err
	}
	return Flatten(cues), nil
}
