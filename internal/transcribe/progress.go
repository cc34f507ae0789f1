package transcribe

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"yt-transcriber/internal/ytdlp"
)

var (
	rePct = regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)%`)
	reETA = regexp.MustCompile(`\bETA\s+([0-9:]+)`)
)

// liveProgress renders one rewriting status line per video while yt-dlp or
// whisper does the slow part.
type liveProgress struct {
	enabled bool

	index   int
	total   int
	done    int
	failed  int
	videoID string
	title   string

	mu    sync.Mutex
	phase string
	pct   string
	eta   string

	stop chan struct{}
}

func newLiveProgress(enabled bool, index, total, done, failed int, videoID, title string) *liveProgress {
	return &liveProgress{
		enabled: enabled,
		index:   index,
		total:   total,
		done:    done,
		failed:  failed,
		videoID: videoID,
		title:   title,
		phase:   "starting",
		stop:    make(chan struct{}),
	}
}

func (p *liveProgress) Start() {
	if !p.enabled {
		return
	}
	go func() {
		t := time.NewTicker(700 * time.Millisecond)
		defer t.Stop()
		for {
			select {
			case <-p.stop:
				return
			case <-t.C:
				fmt.Printf("\r\033[2K%s", p.render())
			}
		}
	}()
}

func (p *liveProgress) Stop(final string) {
	if !p.enabled {
		return
	}
	close(p.stop)
	fmt.Printf("\r\033[2K%s\n", final)
}

func (p *liveProgress) SetPhase(phase string) {
	if !p.enabled {
		return
	}
	p.mu.Lock()
	p.phase = phase
	p.pct = ""
	p.eta = ""
	p.mu.Unlock()
}

// Handle consumes yt-dlp output lines and lifts percent/ETA into the status.
func (p *liveProgress) Handle(stream ytdlp.OutputStream, line string) {
	if !p.enabled {
		return
	}
	l := strings.TrimSpace(line)
	if l == "" {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if strings.HasPrefix(l, "[download]") {
		if m := rePct.FindStringSubmatch(l); len(m) > 1 {
			p.pct = m[1] + "%"
		}
		if m := reETA.FindStringSubmatch(l); len(m) > 1 {
			p.eta = m[1]
		}
	}
}

func (p *liveProgress) render() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	title := p.title
	if len(title) > 52 {
		title = title[:52] + "..."
	}

	parts := []string{fmt.Sprintf("[%d/%d] %s", p.index, p.total, p.videoID), p.phase}
	if p.done > 0 || p.failed > 0 {
		parts = append(parts, fmt.Sprintf("done %d failed %d", p.done, p.failed))
	}
	if p.pct != "" {
		parts = append(parts, p.pct)
	}
	if p.eta != "" {
		parts = append(parts, "ETA "+p.eta)
	}
	parts = append(parts, "| "+title)
	return strings.Join(parts, "  ")
}
