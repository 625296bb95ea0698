// package events defines the progress events emitted during an upload
// transfer and the per-session queue that delivers them to a consumer.
package events

import (
	"encoding/json"
	"math"
)

// Kind identifies a progress event variant.
type Kind string

const (
	KindStart      Kind = "start"
	KindProgress   Kind = "progress"
	KindFileCopied Kind = "file_copied"
	KindDone       Kind = "done"
	KindClose      Kind = "close"
	KindError      Kind = "error"
)

// Event is a tagged progress notification for one upload session.
//
// Only the fields relevant to the Kind are populated; MarshalJSON emits the
// exact wire shape consumed by the browser client.
type Event struct {
	Kind     Kind
	Filename string
	Bytes    int64
	Total    int64
	Pct      float64
	Speed    float64
	Eta      float64
	OK       bool
	FileID   string
	ViewLink string
	Message  string
}

// Start reports that the transfer began and the source file size is known.
func Start(filename string, total int64) Event {
	return Event{Kind: KindStart, Filename: filename, Total: total}
}

// Progress reports transferred byte counts from a periodic statistics record.
func Progress(bytes, total int64, speed, eta float64) Event {
	return Event{
		Kind:  KindProgress,
		Bytes: bytes,
		Total: total,
		Pct:   Percent(bytes, total),
		Speed: speed,
		Eta:   eta,
	}
}

// FileCopied reports that the external tool finished copying the named file.
func FileCopied(filename string) Event {
	return Event{Kind: KindFileCopied, Filename: filename}
}

// Done reports a successful transfer. The file id and view link are empty
// when the post-transfer lookup failed or found no match. A Close always
// follows.
func Done(fileID, viewLink string) Event {
	return Event{Kind: KindDone, OK: true, FileID: fileID, ViewLink: viewLink}
}

// Close is the stream-closing sentinel pushed after Done.
func Close() Event {
	return Event{Kind: KindClose}
}

// Error is the failing terminal event.
func Error(message string) Event {
	return Event{Kind: KindError, Message: message}
}

// Terminal reports whether no further events follow this one. Done is not
// terminal: its closing sentinel still follows.
func (e Event) Terminal() bool {
	return e.Kind == KindClose || e.Kind == KindError
}

// Percent computes bytes*100/total rounded to two decimal places, or 0 when
// the total is unknown or zero.
func Percent(bytes, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(bytes)*100/float64(total)*100) / 100
}

// MarshalJSON emits the event-specific wire shape, e.g.
// {"event":"progress","bytes":250,"total":1000,"pct":25,"speed":0,"eta":0}.
func (e Event) MarshalJSON() ([]byte, error) {
	switch e.Kind {
	case KindStart:
		return json.Marshal(struct {
			Event    Kind   `json:"event"`
			Filename string `json:"filename"`
			Total    int64  `json:"total"`
		}{e.Kind, e.Filename, e.Total})
	case KindProgress:
		return json.Marshal(struct {
			Event Kind    `json:"event"`
			Bytes int64   `json:"bytes"`
			Total int64   `json:"total"`
			Pct   float64 `json:"pct"`
			Speed float64 `json:"speed"`
			Eta   float64 `json:"eta"`
		}{e.Kind, e.Bytes, e.Total, e.Pct, e.Speed, e.Eta})
	case KindFileCopied:
		return json.Marshal(struct {
			Event    Kind   `json:"event"`
			Filename string `json:"filename"`
		}{e.Kind, e.Filename})
	case KindDone:
		return json.Marshal(struct {
			Event    Kind   `json:"event"`
			OK       bool   `json:"ok"`
			FileID   string `json:"file_id,omitempty"`
			ViewLink string `json:"webViewLink,omitempty"`
		}{e.Kind, e.OK, e.FileID, e.ViewLink})
	case KindError:
		return json.Marshal(struct {
			Event   Kind   `json:"event"`
			Message string `json:"message"`
		}{e.Kind, e.Message})
	default:
		return json.Marshal(struct {
			Event Kind `json:"event"`
		}{e.Kind})
	}
}
