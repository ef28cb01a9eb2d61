package service

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/ludo-technologies/revet/domain"
)

// NewProgressManager returns a terminal progress manager when enabled and
// stderr is an interactive terminal, and a silent no-op otherwise. Progress
// always renders to stderr so machine-readable stdout stays clean.
func NewProgressManager(enabled bool) domain.ProgressManager {
	if enabled && IsInteractiveEnvironment() {
		return &ProgressManagerImpl{writer: os.Stderr}
	}
	return &NoOpProgressManager{}
}

// IsInteractiveEnvironment reports whether progress bars should render:
// stderr must be a terminal and we must not be running under CI.
func IsInteractiveEnvironment() bool {
	if os.Getenv("CI") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	info, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// ProgressManagerImpl renders progress bars on a terminal
type ProgressManagerImpl struct {
	writer io.Writer
	mu     sync.Mutex
	open   []*progressbar.ProgressBar
}

// StartTask opens a bar for a unit of work with a known size. A task with
// an unknown size (total <= 0) renders as a spinner.
func (pm *ProgressManagerImpl) StartTask(description string, total int) domain.TaskProgress {
	if total <= 0 {
		total = -1 // progressbar renders -1 as a spinner
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(pm.writer),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(24),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionOnCompletion(func() {
			_, _ = io.WriteString(pm.writer, "\n")
		}),
	)
	pm.mu.Lock()
	pm.open = append(pm.open, bar)
	pm.mu.Unlock()
	return &barTask{bar: bar}
}

func (pm *ProgressManagerImpl) IsInteractive() bool { return true }

// Close finishes any bar still rendering
func (pm *ProgressManagerImpl) Close() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	for _, bar := range pm.open {
		_ = bar.Finish()
	}
	pm.open = nil
}

type barTask struct {
	bar *progressbar.ProgressBar
}

func (t *barTask) Increment(n int) {
	_ = t.bar.Add(n)
}

func (t *barTask) Describe(description string) {
	t.bar.Describe(description)
}

func (t *barTask) Complete() {
	_ = t.bar.Finish()
}

// NoOpProgressManager satisfies the progress contract without rendering
// anything. It backs non-interactive runs (CI, piped output).
type NoOpProgressManager struct{}

func (pm *NoOpProgressManager) StartTask(_ string, _ int) domain.TaskProgress {
	return &NoOpTaskProgress{}
}

func (pm *NoOpProgressManager) IsInteractive() bool { return false }

func (pm *NoOpProgressManager) Close() {}

// NoOpTaskProgress discards all progress updates
type NoOpTaskProgress struct{}

func (tp *NoOpTaskProgress) Increment(_ int) {}

func (tp *NoOpTaskProgress) Describe(_ string) {}

func (tp *NoOpTaskProgress) Complete() {}
