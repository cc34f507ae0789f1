package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"yt-transcriber/internal/model"
	"yt-transcriber/internal/store"
	"yt-transcriber/internal/transcribe"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type browseMode int

const (
	browseModeChannels browseMode = iota
	browseModeVideos
)

var (
	browseTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	browseMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	browseErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	browseOKStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	browseFailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	browsePanelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	browseSelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Bold(true)
)

type browseModel struct {
	outRoot string
	rows    []transcribe.ChannelStatus
	cursor  int
	width   int
	height  int
	mode    browseMode

	filter    textinput.Model
	filtering bool

	selected    transcribe.ChannelStatus
	entries     []model.ManifestEntry
	entryCursor int
	preview     string

	statusMessage string
	fatalErr      error
}

type browseChannelsMsg struct {
	rows []transcribe.ChannelStatus
	err  error
}

type browseEntriesMsg struct {
	entries []model.ManifestEntry
	err     error
}

type browsePreviewMsg struct {
	text string
	err  error
}

func runBrowse(args []string) error {
	fs := flag.NewFlagSet("browse", flag.ContinueOnError)
	outRoot := fs.String("out-root", ".", "root directory for channel output directories")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !stdinIsTTY() {
		return errors.New("browse requires an interactive terminal (TTY)")
	}

	filter := textinput.New()
	filter.Prompt = "/ "
	filter.Placeholder = "filter channels"
	filter.CharLimit = 128

	m := browseModel{
		outRoot: strings.TrimSpace(*outRoot),
		mode:    browseModeChannels,
		filter:  filter,
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "tty") {
			return errors.New("browse requires an interactive terminal (TTY)")
		}
		return err
	}
	if fm, ok := finalModel.(browseModel); ok {
		return fm.fatalErr
	}
	return nil
}

func (m browseModel) Init() tea.Cmd {
	return loadChannelsCmd(m.outRoot)
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filter.Width = clampInt(m.width-8, 20, 120)
		return m, nil
	case browseChannelsMsg:
		if msg.err != nil {
			m.fatalErr = msg.err
			return m, tea.Quit
		}
		m.rows = msg.rows
		if total := len(m.visibleRows()); m.cursor >= total {
			m.cursor = maxInt(total-1, 0)
		}
		return m, nil
	case browseEntriesMsg:
		if msg.err != nil {
			m.statusMessage = "error: " + msg.err.Error()
			return m, nil
		}
		m.entries = msg.entries
		m.entryCursor = 0
		m.preview = ""
		m.mode = browseModeVideos
		return m, nil
	case browsePreviewMsg:
		if msg.err != nil {
			m.statusMessage = "error: " + msg.err.Error()
			return m, nil
		}
		m.preview = msg.text
		return m, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.mode == browseModeVideos {
		return m.updateVideos(keyMsg)
	}
	return m.updateChannels(keyMsg)
}

func (m browseModel) updateChannels(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filtering {
		switch msg.String() {
		case "enter", "esc":
			m.filtering = false
			m.filter.Blur()
			if msg.String() == "esc" {
				m.filter.SetValue("")
			}
			m.cursor = 0
			return m, nil
		default:
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			m.cursor = 0
			return m, cmd
		}
	}

	rows := m.visibleRows()
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(rows)-1 {
			m.cursor++
		}
	case "/":
		m.filtering = true
		m.filter.Focus()
	case "r":
		m.statusMessage = ""
		return m, loadChannelsCmd(m.outRoot)
	case "enter":
		if m.cursor < len(rows) {
			m.selected = rows[m.cursor]
			return m, loadEntriesCmd(m.selected.Dir)
		}
	}
	return m, nil
}

func (m browseModel) updateVideos(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		if m.entryCursor > 0 {
			m.entryCursor--
			m.preview = ""
		}
	case "down", "j":
		if m.entryCursor < len(m.entries)-1 {
			m.entryCursor++
			m.preview = ""
		}
	case "enter":
		if m.entryCursor < len(m.entries) {
			return m, loadPreviewCmd(m.entries[m.entryCursor].Path)
		}
	case "esc", "backspace", "left", "h":
		m.mode = browseModeChannels
		m.entries = nil
		m.preview = ""
	}
	return m, nil
}

// visibleRows applies the channel name filter.
func (m browseModel) visibleRows() []transcribe.ChannelStatus {
	needle := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	if needle == "" {
		return m.rows
	}
	out := make([]transcribe.ChannelStatus, 0, len(m.rows))
	for _, r := range m.rows {
		if strings.Contains(strings.ToLower(r.Channel), needle) {
			out = append(out, r)
		}
	}
	return out
}

func (m browseModel) View() string {
	if m.fatalErr != nil {
		return browseErrorStyle.Render("fatal: " + m.fatalErr.Error())
	}
	if m.width <= 0 {
		m.width = 100
	}
	if m.height <= 0 {
		m.height = 30
	}
	if m.mode == browseModeVideos {
		return m.viewVideos()
	}
	return m.viewChannels()
}

func (m browseModel) viewChannels() string {
	header := browseTitleStyle.Render("yt-transcriber browse") + "\n" +
		browseMutedStyle.Render("up/down: move | enter: open channel | /: filter | r: refresh | q: quit")

	rows := m.visibleRows()
	maxRows := clampInt(m.height-12, 4, 20)
	start, end := listWindow(len(rows), m.cursor, maxRows)

	lines := make([]string, 0, maxRows+3)
	if m.filtering || strings.TrimSpace(m.filter.Value()) != "" {
		lines = append(lines, m.filter.View())
	}
	if len(rows) == 0 {
		lines = append(lines, browseMutedStyle.Render("No channel directories found."))
		lines = append(lines, browseMutedStyle.Render("Run: yt-transcriber run --channel <url>"))
	}
	if start > 0 {
		lines = append(lines, browseMutedStyle.Render("..."))
	}
	for i := start; i < end; i++ {
		r := rows[i]
		line := fmt.Sprintf("%s  done=%d failed=%d", r.Channel, r.Done, r.Failed)
		line = truncateRunes(line, maxInt(m.width-8, 10))
		if i == m.cursor {
			line = browseSelStyle.Width(maxInt(m.width-6, 6)).Render(line)
		}
		lines = append(lines, line)
	}
	if end < len(rows) {
		lines = append(lines, browseMutedStyle.Render("..."))
	}

	list := browsePanelStyle.Width(maxInt(m.width-2, 30)).Render(strings.Join(lines, "\n"))
	details := m.renderChannelDetails(rows)
	status := m.renderStatusLine()
	return lipgloss.JoinVertical(lipgloss.Left, header, list, details, status)
}

func (m browseModel) renderChannelDetails(rows []transcribe.ChannelStatus) string {
	lines := []string{}
	if m.cursor < len(rows) {
		r := rows[m.cursor]
		lines = append(lines, "Channel Details")
		lines = append(lines, "")
		lines = append(lines, kv("channel", r.Channel))
		lines = append(lines, kv("dir", r.Dir))
		lines = append(lines, kv("manifest_entries", strconv.Itoa(r.Entries)))
		lines = append(lines, kv("done", strconv.Itoa(r.Done)))
		lines = append(lines, kv("failed", strconv.Itoa(r.Failed)))
		lines = append(lines, kv("txt_files", strconv.Itoa(r.TxtFiles)))
		lines = append(lines, kv("combined", defaultIfEmpty(r.CombinedPath, "(not built)")))
	} else {
		lines = append(lines, "Select a channel and press Enter to see its videos.")
	}
	for i := range lines {
		lines[i] = truncateRunes(lines[i], maxInt(m.width-8, 12))
	}
	return browsePanelStyle.Width(maxInt(m.width-2, 30)).Render(strings.Join(lines, "\n"))
}

func (m browseModel) viewVideos() string {
	header := browseTitleStyle.Render("yt-transcriber browse: "+m.selected.Channel) + "\n" +
		browseMutedStyle.Render("up/down: move | enter: preview | esc: back | q: quit")

	maxRows := clampInt(m.height-12, 4, 20)
	start, end := listWindow(len(m.entries), m.entryCursor, maxRows)

	lines := make([]string, 0, maxRows+2)
	if len(m.entries) == 0 {
		lines = append(lines, browseMutedStyle.Render("Manifest is empty."))
	}
	if start > 0 {
		lines = append(lines, browseMutedStyle.Render("..."))
	}
	for i := start; i < end; i++ {
		e := m.entries[i]
		mark := browseOKStyle.Render("done")
		if !e.Done() {
			mark = browseFailStyle.Render("fail")
		}
		line := fmt.Sprintf("%s  %s  %s", mark, e.VideoID, defaultIfEmpty(e.Title, "(untitled)"))
		line = truncateRunes(line, maxInt(m.width-8, 10))
		if i == m.entryCursor {
			line = browseSelStyle.Width(maxInt(m.width-6, 6)).Render(line)
		}
		lines = append(lines, line)
	}
	if end < len(m.entries) {
		lines = append(lines, browseMutedStyle.Render("..."))
	}

	list := browsePanelStyle.Width(maxInt(m.width-2, 30)).Render(strings.Join(lines, "\n"))
	details := m.renderEntryDetails()
	status := m.renderStatusLine()
	return lipgloss.JoinVertical(lipgloss.Left, header, list, details, status)
}

func (m browseModel) renderEntryDetails() string {
	lines := []string{}
	if m.entryCursor < len(m.entries) {
		e := m.entries[m.entryCursor]
		lines = append(lines, "Video Details")
		lines = append(lines, "")
		lines = append(lines, kv("video_id", e.VideoID))
		lines = append(lines, kv("title", defaultIfEmpty(e.Title, "(untitled)")))
		lines = append(lines, kv("url", defaultIfEmpty(e.URL, "(unknown)")))
		lines = append(lines, kv("status", defaultIfEmpty(e.Status, model.EntryDone)))
		lines = append(lines, kv("source", defaultIfEmpty(e.Source, "(none)")))
		lines = append(lines, kv("transcript", defaultIfEmpty(e.Path, "(none)")))
		lines = append(lines, kv("recorded_at", defaultIfEmpty(e.Timestamp, "(unknown)")))
		if m.preview != "" {
			lines = append(lines, "")
			lines = append(lines, browseMutedStyle.Render("preview:"))
			lines = append(lines, wrapRunes(m.preview, maxInt(m.width-8, 12), 6)...)
		} else if e.Path != "" {
			lines = append(lines, "")
			lines = append(lines, browseMutedStyle.Render("enter: preview transcript"))
		}
	} else {
		lines = append(lines, "No videos recorded for this channel yet.")
	}
	for i := range lines {
		lines[i] = truncateRunes(lines[i], maxInt(m.width-8, 12))
	}
	return browsePanelStyle.Width(maxInt(m.width-2, 30)).Render(strings.Join(lines, "\n"))
}

func (m browseModel) renderStatusLine() string {
	msg := strings.TrimSpace(m.statusMessage)
	if msg == "" {
		msg = "Tip: failed videos are retried automatically on the next run."
	}
	style := browseMutedStyle
	if strings.HasPrefix(strings.ToLower(msg), "error:") {
		style = browseErrorStyle
	}
	return style.Width(maxInt(m.width, 20)).Render(truncateRunes(msg, maxInt(m.width-2, 10)))
}

func loadChannelsCmd(outRoot string) tea.Cmd {
	return func() tea.Msg {
		res, err := transcribe.Status(outRoot)
		if err != nil {
			return browseChannelsMsg{err: err}
		}
		return browseChannelsMsg{rows: res.Rows}
	}
}

// loadEntriesCmd reads a channel manifest and keeps the last entry per video
// id, preserving first-seen order.
func loadEntriesCmd(channelDir string) tea.Cmd {
	return func() tea.Msg {
		manifest, err := store.LoadManifest(filepath.Join(channelDir, store.ManifestFileName))
		if err != nil {
			return browseEntriesMsg{err: err}
		}
		order := make([]string, 0, manifest.Len())
		latest := make(map[string]model.ManifestEntry, manifest.Len())
		for _, e := range manifest.Entries() {
			if _, seen := latest[e.VideoID]; !seen {
				order = append(order, e.VideoID)
			}
			latest[e.VideoID] = e
		}
		entries := make([]model.ManifestEntry, 0, len(order))
		for _, id := range order {
			entries = append(entries, latest[id])
		}
		return browseEntriesMsg{entries: entries}
	}
}

// wrapRunes breaks a single long line into at most maxLines rows of width
// runes; transcripts come back as one unbroken line.
func wrapRunes(s string, width, maxLines int) []string {
	r := []rune(s)
	lines := make([]string, 0, maxLines)
	for len(r) > 0 && len(lines) < maxLines {
		n := width
		if n > len(r) {
			n = len(r)
		}
		lines = append(lines, string(r[:n]))
		r = r[n:]
	}
	if len(r) > 0 && len(lines) > 0 {
		lines[len(lines)-1] = truncateRunes(lines[len(lines)-1]+"…", width)
	}
	return lines
}

// loadPreviewCmd reads the head of a per-video transcript for the details
// panel. Whole transcripts can run to megabytes; a preview is enough here.
func loadPreviewCmd(path string) tea.Cmd {
	return func() tea.Msg {
		if strings.TrimSpace(path) == "" {
			return browsePreviewMsg{err: errors.New("no transcript recorded for this video")}
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return browsePreviewMsg{err: err}
		}
		const previewRunes = 600
		return browsePreviewMsg{text: truncateRunes(strings.TrimSpace(string(data)), previewRunes)}
	}
}
