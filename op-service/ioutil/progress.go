package ioutil

import (
	"io"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/schollz/progressbar/v3"
)

// Progressor is told how many of total steps are done.
type Progressor func(curr, total int64)

// BarProgressor renders a progress bar to w. The bar is created on first use,
// once the total is known.
func BarProgressor(w io.Writer, description string) Progressor {
	var bar *progressbar.ProgressBar
	var init sync.Once
	return func(curr, total int64) {
		init.Do(func() {
			bar = progressbar.NewOptions64(total,
				progressbar.OptionSetWriter(w),
				progressbar.OptionSetDescription(description),
				progressbar.OptionShowCount(),
				progressbar.OptionOnCompletion(func() { _, _ = io.WriteString(w, "\n") }),
			)
		})
		_ = bar.Set64(curr)
	}
}

func NoopProgressor() Progressor {
	return func(curr, total int64) {}
}

// LogProgressor logs progress at most once per Interval, and always on completion.
type LogProgressor struct {
	L        log.Logger
	Msg      string
	Interval time.Duration

	lastLog time.Time
	mu      sync.Mutex
}

func NewLogProgressor(l log.Logger, msg string) *LogProgressor {
	return &LogProgressor{
		L:   l,
		Msg: msg,
	}
}

func (l *LogProgressor) Progressor(curr, total int64) {
	if curr < total && !l.due() {
		return
	}
	msg := l.Msg
	if msg == "" {
		msg = "progress"
	}
	l.L.Info(msg, "current", curr, "total", total)
}

func (l *LogProgressor) due() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	interval := l.Interval
	if interval == 0 {
		interval = time.Second
	}
	if time.Since(l.lastLog) < interval {
		return false
	}
	l.lastLog = time.Now()
	return true
}
