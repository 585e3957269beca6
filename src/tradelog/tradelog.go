package tradelog

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
	"unicode"
)

// MaxLiveEntries bounds the in-memory tail that backs the live log view.
const MaxLiveEntries = 50

const timestampLayout = "2006-01-02 15:04:05"

type Entry struct {
	Timestamp time.Time
	Action    string
	Symbol    string
	OrderType string
	Result    string
	Detail    string
}

func (e Entry) String() string {
	return fmt.Sprintf("[%s] action=%s symbol=%s type=%s result=%s detail=%s",
		e.Timestamp.Format(timestampLayout), sanitize(e.Action), orDash(e.Symbol), orDash(e.OrderType), sanitize(e.Result), sanitize(e.Detail))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}

	return sanitize(s)
}

// sanitize replaces control characters so a request-supplied value can never
// split an entry across lines or forge an extra one.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}

		return r
	}, s)
}

// TradeLog appends one line per order event to a plain-text file. The file is
// opened once for the life of the process and every append happens under the
// mutex as a single write, so concurrent requests never interleave lines.
type TradeLog struct {
	mu   sync.Mutex
	file *os.File
	live []Entry
}

func Open(path string) (*TradeLog, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("tradelog.Open: failed to open %s: %w", path, err)
	}

	return &TradeLog{file: file}, nil
}

func (l *TradeLog) Append(e Entry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	line := e.String() + "\n"

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return fmt.Errorf("tradelog.Append: log is closed")
	}

	if _, err := l.file.WriteString(line); err != nil {
		return fmt.Errorf("tradelog.Append: failed to write entry: %w", err)
	}

	l.live = append(l.live, e)
	if len(l.live) > MaxLiveEntries {
		l.live = l.live[len(l.live)-MaxLiveEntries:]
	}

	return nil
}

// Tail returns up to n of the newest entries, oldest first.
func (l *TradeLog) Tail(n int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n < 0 {
		n = 0
	}
	if n > len(l.live) {
		n = len(l.live)
	}

	tail := make([]Entry, n)
	copy(tail, l.live[len(l.live)-n:])

	return tail
}

// Close flushes and releases the file handle. Safe to call more than once.
func (l *TradeLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}

	file := l.file
	l.file = nil

	if err := file.Sync(); err != nil {
		file.Close()
		return fmt.Errorf("tradelog.Close: failed to sync: %w", err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("tradelog.Close: failed to close: %w", err)
	}

	return nil
}
