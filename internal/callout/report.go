package callout

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/natefinch/atomic"
)

// WriteReport writes the callout to callout_<MMDD>_<HHMMSS>.md under
// dir, prefixed with a generation header. The write is atomic so a
// crash mid-write never leaves a truncated report behind.
func WriteReport(dir, date, text string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}

	name := fmt.Sprintf("callout_%s_%s.md", compactMonthDay(date), now.Format("150405"))
	path := filepath.Join(dir, name)

	var b strings.Builder
	fmt.Fprintf(&b, "# Experiment Callout - %s\n\n", date)
	fmt.Fprintf(&b, "*Generated: %s*\n\n", now.Format(time.RFC3339))
	b.WriteString("---\n\n")
	b.WriteString(text)

	if err := atomic.WriteFile(path, strings.NewReader(b.String())); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

func compactMonthDay(date string) string {
	if t, err := time.Parse("2006-01-02", date); err == nil {
		return t.Format("0102")
	}
	return strings.ReplaceAll(date, "-", "")
}
