package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"unicode"
)

const (
	clrReset  = "\033[0m"
	clrBold   = "\033[1m"
	clrRed    = "\033[31m"
	clrYellow = "\033[33m"
	clrGreen  = "\033[32m"
	clrCyan   = "\033[36m"
	clrGray   = "\033[90m"
	clrWhite  = "\033[97m"
)

// prettyHandler is a slog.Handler that formats log records with ANSI colors.
// Designed for CLI output: no timestamps, colored level indicators, highlighted values.
type prettyHandler struct {
	mu    *sync.Mutex
	out   io.Writer
	level slog.Level
	attrs []slog.Attr // pre-set attrs from WithAttrs, keys already qualified
	group string      // key prefix from WithGroup, e.g. "vsan."
}

func newPrettyLogger(w io.Writer) *slog.Logger {
	return slog.New(&prettyHandler{mu: &sync.Mutex{}, out: w, level: slog.LevelInfo})
}

// newDebugLogger logs every level as key=value text, for the --debug log file.
func newDebugLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	newAttrs = append(newAttrs, h.attrs...)
	for _, a := range attrs {
		newAttrs = append(newAttrs, slog.Attr{Key: h.group + a.Key, Value: a.Value})
	}
	return &prettyHandler{mu: h.mu, out: h.out, level: h.level, attrs: newAttrs, group: h.group}
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &prettyHandler{mu: h.mu, out: h.out, level: h.level, attrs: h.attrs, group: h.group + name + "."}
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	var prefix, msgColor string
	switch r.Level {
	case slog.LevelInfo:
		prefix = clrGray + "  → " + clrReset
		msgColor = clrWhite
	case slog.LevelWarn:
		prefix = clrYellow + "  ⚠ " + clrReset
		msgColor = clrYellow
	case slog.LevelError:
		prefix = clrRed + "  ✗ " + clrReset
		msgColor = clrRed
	default:
		prefix = clrGray + "  · " + clrReset
		msgColor = clrGray
	}

	var sb strings.Builder
	sb.WriteString(prefix)
	sb.WriteString(msgColor)
	sb.WriteString(clrBold)
	sb.WriteString(r.Message)
	sb.WriteString(clrReset)

	writeAttr := func(a slog.Attr) bool {
		sb.WriteString("  ")
		sb.WriteString(clrGray)
		sb.WriteString(a.Key)
		sb.WriteString("=")
		sb.WriteString(clrReset)
		sb.WriteString(colorForValue(a))
		sb.WriteString(a.Value.String())
		sb.WriteString(clrReset)
		return true
	}

	for _, a := range h.attrs {
		writeAttr(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		return writeAttr(slog.Attr{Key: h.group + a.Key, Value: a.Value})
	})

	sb.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprint(h.out, sb.String())
	return err
}

// stateColors colors the values host operations log: connection and power
// state, service state and startup policy, vSAN health and acceptance level.
var stateColors = map[string]string{
	"connected":        clrGreen,
	"poweredOn":        clrGreen,
	"running":          clrGreen,
	"healthy":          clrGreen,
	"automatic":        clrGreen,
	"on":               clrGreen,
	"vmware_certified": clrGreen,
	"vmware_accepted":  clrGreen,
	"partner":          clrGreen,
	"disconnected":     clrYellow,
	"notResponding":    clrRed,
	"poweredOff":       clrYellow,
	"standBy":          clrYellow,
	"stopped":          clrYellow,
	"off":              clrYellow,
	"community":        clrYellow,
	"unknown":          clrGray,
	"unhealthy":        clrRed,
	"partitioned":      clrRed,
}

// colorForValue picks an ANSI color based on the attribute key and value.
func colorForValue(a slog.Attr) string {
	switch a.Key {
	case "error":
		return clrRed
	case "run_id", "next":
		return clrGray
	case "host", "cluster", "datacenter", "service", "operation", "from", "to", "path":
		return clrCyan
	}
	val := a.Value.String()
	if c, ok := stateColors[val]; ok {
		return c
	}
	if a.Value.Kind() == slog.KindBool {
		if a.Value.Bool() {
			return clrGreen
		}
		return clrYellow
	}
	if isNumericVal(val) {
		return clrYellow
	}
	return clrCyan
}

func isNumericVal(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if !unicode.IsDigit(c) && c != '.' && c != '-' {
			return false
		}
	}
	return true
}
