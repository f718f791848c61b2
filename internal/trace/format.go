package trace

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Format selects the trace output encoding.
type Format uint8

const (
	// FormatAuto detects the format from the output path extension.
	FormatAuto Format = iota
	// FormatText is a human-readable line format.
	FormatText
	// FormatNDJSON is newline-delimited JSON, one event per line.
	FormatNDJSON
)

func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatText:
		return "text"
	case FormatNDJSON:
		return "ndjson"
	default:
		return "unknown"
	}
}

// ParseFormat converts a string to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson":
		return FormatNDJSON, nil
	default:
		return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson)", s)
	}
}

type jsonEvent struct {
	Time   string            `json:"time"`
	Seq    uint64            `json:"seq"`
	Kind   string            `json:"kind"`
	Scope  string            `json:"scope"`
	Span   uint64            `json:"span"`
	Parent uint64            `json:"parent,omitempty"`
	Name   string            `json:"name"`
	Detail string            `json:"detail,omitempty"`
	Extra  map[string]string `json:"extra,omitempty"`
}

// FormatEvent renders one event, newline-terminated.
func FormatEvent(ev *Event, f Format) []byte {
	switch f {
	case FormatNDJSON:
		data, err := json.Marshal(jsonEvent{
			Time:   ev.Time.Format("15:04:05.000"),
			Seq:    ev.Seq,
			Kind:   ev.Kind.String(),
			Scope:  ev.Scope.String(),
			Span:   ev.SpanID,
			Parent: ev.ParentID,
			Name:   ev.Name,
			Detail: ev.Detail,
			Extra:  ev.Extra,
		})
		if err != nil {
			return nil
		}
		return append(data, '\n')
	default:
		var sb strings.Builder
		fmt.Fprintf(&sb, "[%s] %-5s %-6s %s",
			ev.Time.Format("15:04:05.000"), ev.Kind, ev.Scope, ev.Name)
		if ev.Detail != "" {
			fmt.Fprintf(&sb, " (%s)", ev.Detail)
		}
		for k, v := range ev.Extra {
			fmt.Fprintf(&sb, " %s=%s", k, v)
		}
		sb.WriteByte('\n')
		return []byte(sb.String())
	}
}
