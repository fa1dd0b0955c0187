package crawler

import (
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// Reporter receives crawl progress. A total of -1 means unknown.
type Reporter interface {
	Start(total int, description string)
	Update(current int, message string)
	Finish()
}

// NewReporter returns a progress bar on interactive runs and a log based
// reporter under CI.
func NewReporter(log *zap.Logger) Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &LogReporter{log: log}
	}
	return &TerminalReporter{}
}

// TerminalReporter draws a progress bar on stderr.
type TerminalReporter struct {
	mu  sync.Mutex
	bar *progressbar.ProgressBar
}

func (r *TerminalReporter) Start(total int, description string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *TerminalReporter) Update(current int, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bar != nil {
		r.bar.Describe(message)
		_ = r.bar.Set(current)
	}
}

func (r *TerminalReporter) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// LogReporter writes one log line per update.
type LogReporter struct {
	log   *zap.Logger
	total int
}

func (r *LogReporter) Start(total int, description string) {
	r.total = total
	r.log.Info("crawl started", zap.String("what", description), zap.Int("total", total))
}

func (r *LogReporter) Update(current int, message string) {
	r.log.Info("crawl progress", zap.Int("current", current), zap.Int("total", r.total), zap.String("item", message))
}

func (r *LogReporter) Finish() {
	r.log.Info("crawl finished")
}
