package downloader

import (
	"strconv"
	"strings"
)

const (
	progressTag = "[ytdlq]"
	savedTag    = "[ytdlq-saved]"
)

// progressTemplate makes yt-dlp print one machine-readable line per progress
// tick: status, downloaded bytes, total bytes, estimated total bytes.
// Missing fields come out as "NA".
var progressTemplate = "download:" + progressTag +
	" %(progress.status)s %(progress.downloaded_bytes)s %(progress.total_bytes)s %(progress.total_bytes_estimate)s"

// savedTemplate reports the final file path after post-processing.
var savedTemplate = "after_move:" + savedTag + " %(filepath)s"

// ParseProgress parses a line produced by progressTemplate.
// The exact total wins over the estimate; when neither is known TotalBytes
// stays 0.
func ParseProgress(line string) (Event, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, progressTag+" ") {
		return Event{}, false
	}
	fields := strings.Fields(strings.TrimPrefix(line, progressTag))
	if len(fields) < 2 {
		return Event{}, false
	}

	ev := Event{Status: fields[0]}
	if v, ok := parseBytes(fields[1]); ok {
		ev.DownloadedBytes = v
	}
	if len(fields) > 2 {
		if v, ok := parseBytes(fields[2]); ok && v > 0 {
			ev.TotalBytes = v
		}
	}
	if ev.TotalBytes == 0 && len(fields) > 3 {
		if v, ok := parseBytes(fields[3]); ok && v > 0 {
			ev.TotalBytes = v
		}
	}
	return ev, true
}

// parseSaved extracts the path from a savedTemplate line.
func parseSaved(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, savedTag+" ") {
		return "", false
	}
	p := strings.TrimSpace(strings.TrimPrefix(line, savedTag))
	if p == "" || p == "NA" {
		return "", false
	}
	return p, true
}

// parseBytes accepts integers and floats ("1234", "1234.0"); "NA" and
// "None" are unknown.
func parseBytes(s string) (int64, bool) {
	switch s {
	case "", "NA", "None":
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0, false
	}
	return int64(f), true
}

const errorPrefix = "ERROR:"

// parseError extracts the message of a yt-dlp "ERROR: ..." line.
func parseError(line string) (string, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(line), errorPrefix)
	if !ok {
		return "", false
	}
	rest = strings.TrimSpace(rest)
	return rest, rest != ""
}
