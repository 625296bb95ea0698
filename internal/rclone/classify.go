package rclone

import (
	"encoding/json"
	"strings"

	"github.com/desertthunder/driverelay/internal/events"
)

// statsRecord mirrors the stats object rclone embeds in its JSON log lines.
type statsRecord struct {
	Bytes int64    `json:"bytes"`
	Speed float64  `json:"speed"`
	Eta   *float64 `json:"eta"`
}

// logRecord is the subset of an rclone JSON log line the classifier reads.
type logRecord struct {
	Msg    string       `json:"msg"`
	Object string       `json:"object"`
	Stats  *statsRecord `json:"stats"`
}

// Classify maps one raw diagnostic line to progress events.
//
// A line carrying a stats object yields a progress event; a "Copied" message
// for the session's file yields a file_copied event. Malformed lines and
// missing fields never fail: the line is simply ignored.
func Classify(line []byte, filename string, total int64) []events.Event {
	var record logRecord
	if err := json.Unmarshal(line, &record); err != nil {
		return nil
	}

	var out []events.Event

	if record.Stats != nil {
		var eta float64
		if record.Stats.Eta != nil {
			eta = *record.Stats.Eta
		}
		out = append(out, events.Progress(record.Stats.Bytes, total, record.Stats.Speed, eta))
	}

	if strings.HasPrefix(record.Msg, "Copied") && record.Object == filename {
		out = append(out, events.FileCopied(filename))
	}

	return out
}
