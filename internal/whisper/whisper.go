package whisper

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// binaryName is the faster-whisper CLI. It writes one output file per input
// in the requested format, which keeps this wrapper to "run, then read".
const binaryName = "whisper-ctranslate2"

type Options struct {
	AudioPath   string
	Model       string
	Device      string
	ComputeType string
	WorkDir     string
}

func CheckModel(raw string) (string, error) {
	model, ok := normalizeModel(raw)
	if !ok {
		return "", fmt.Errorf("invalid whisper model %q (expected small, medium, or large-v3)", strings.TrimSpace(raw))
	}
	return model, nil
}

func CheckDevice(raw string) (string, error) {
	device, ok := normalizeDevice(raw)
	if !ok {
		return "", fmt.Errorf("invalid whisper device %q (expected auto, cpu, or cuda)", strings.TrimSpace(raw))
	}
	return device, nil
}

func CheckComputeType(raw string) (string, error) {
	computeType, ok := normalizeComputeType(raw)
	if !ok {
		return "", fmt.Errorf("invalid compute type %q (expected auto, int8, float16, or float32)", strings.TrimSpace(raw))
	}
	return computeType, nil
}

type DependencyReport struct {
	Found bool   `json:"whisper_found"`
	Path  string `json:"whisper_path,omitempty"`
}

func DependencyStatus() DependencyReport {
	report := DependencyReport{}
	if path, err := exec.LookPath(binaryName); err == nil {
		report.Found = true
		report.Path = path
	}
	return report
}

func CheckDependencies() error {
	if !DependencyStatus().Found {
		return fmt.Errorf("missing dependency: %s is not installed or not on PATH", binaryName)
	}
	return nil
}

// Transcribe runs local speech-to-text over a downloaded audio file and
// returns the plain text. The CLI writes its output next to nothing we keep,
// so a scratch work directory is required.
func Transcribe(opts Options) (string, error) {
	if strings.TrimSpace(opts.AudioPath) == "" {
		return "", fmt.Errorf("audio path is required")
	}
	if strings.TrimSpace(opts.WorkDir) == "" {
		return "", fmt.Errorf("work directory is required")
	}
	model, err := CheckModel(opts.Model)
	if err != nil {
		return "", err
	}
	device, err := CheckDevice(opts.Device)
	if err != nil {
		return "", err
	}
	computeType, err := CheckComputeType(opts.ComputeType)
	if err != nil {
		return "", err
	}

	args := []string{
		"--model", model,
		"--device", device,
		"--compute_type", computeType,
		"--vad_filter", "True",
		"--output_format", "txt",
		"--output_dir", opts.WorkDir,
		"--verbose", "False",
		opts.AudioPath,
	}

	cmd := exec.Command(binaryName, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s failed: %w: %s", binaryName, err, strings.TrimSpace(stderr.String()))
	}

	outPath := transcriptPath(opts.WorkDir, opts.AudioPath)
	data, err := os.ReadFile(outPath)
	if err != nil {
		return "", fmt.Errorf("read whisper output %s: %w", outPath, err)
	}
	_ = os.Remove(outPath)
	return collapseLines(string(data)), nil
}

// transcriptPath mirrors the CLI's naming: "<work dir>/<audio stem>.txt".
func transcriptPath(workDir, audioPath string) string {
	base := filepath.Base(audioPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(workDir, stem+".txt")
}

// collapseLines folds the one-segment-per-line output into a single line.
func collapseLines(s string) string {
	lines := strings.Split(s, "\n")
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}

func normalizeModel(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "medium":
		return "medium", true
	case "small", "large-v3":
		return strings.ToLower(strings.TrimSpace(raw)), true
	default:
		return "", false
	}
}

func normalizeDevice(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "auto":
		return "auto", true
	case "cpu", "cuda":
		return strings.ToLower(strings.TrimSpace(raw)), true
	default:
		return "", false
	}
}

func normalizeComputeType(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "auto":
		return "auto", true
	case "int8", "float16", "float32":
		return strings.ToLower(strings.TrimSpace(raw)), true
	default:
		return "", false
	}
}
