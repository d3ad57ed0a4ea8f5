// Package format renders sizes and durations for the job table and the
// headless summary.
package format

import (
	"fmt"
	"time"
)

var byteUnits = []string{"KB", "MB", "GB", "TB", "PB"}

// HumanizeBytes renders a byte count in binary units, e.g. "1.5 MB".
func HumanizeBytes(b int64) string {
	if b < 1024 {
		return fmt.Sprintf("%d B", b)
	}
	v := float64(b) / 1024
	i := 0
	for v >= 1024 && i < len(byteUnits)-1 {
		v /= 1024
		i++
	}
	return fmt.Sprintf("%.1f %s", v, byteUnits[i])
}

// Duration renders d rounded to the second as "42s", "3m07s" or "1h02m".
func Duration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	switch {
	case h > 0:
		return fmt.Sprintf("%dh%02dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm%02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
