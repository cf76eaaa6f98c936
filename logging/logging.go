package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Log output formats.
const (
	FormatJSON   = "json"
	FormatPretty = "pretty"
)

// PrettyJSONHandler is a custom handler that pretty prints JSON in development
type PrettyJSONHandler struct {
	*slog.JSONHandler
	writer io.Writer
	attrs  []slog.Attr
}

func (h *PrettyJSONHandler) Handle(ctx context.Context, r slog.Record) error {
	attrs := make(map[string]interface{}, len(h.attrs)+r.NumAttrs()+3)
	for _, a := range h.attrs {
		attrs[a.Key] = plainValue(a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = plainValue(a.Value)
		return true
	})

	attrs["time"] = r.Time.Format(time.RFC3339)
	attrs["level"] = r.Level.String()
	attrs["msg"] = r.Message

	prettyJSON, err := json.MarshalIndent(attrs, "", "  ")
	if err != nil {
		return err
	}

	_, err = h.writer.Write(append(prettyJSON, '\n'))
	return err
}

// plainValue resolves v for encoding/json. Errors have no exported fields
// and would marshal as {}, so they are written as their message.
func plainValue(v slog.Value) any {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindGroup:
		group := make(map[string]any, len(v.Group()))
		for _, a := range v.Group() {
			group[a.Key] = plainValue(a.Value)
		}
		return group
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindDuration:
		return v.Duration().String()
	}
	if err, ok := v.Any().(error); ok {
		return err.Error()
	}
	return v.Any()
}

// WithAttrs keeps attributes added through Logger.With so they are printed.
func (h *PrettyJSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &PrettyJSONHandler{JSONHandler: h.JSONHandler, writer: h.writer, attrs: merged}
}

// NewPrettyJSONHandler creates a new pretty JSON handler writing to w.
func NewPrettyJSONHandler(w io.Writer, level slog.Leveler) *PrettyJSONHandler {
	return &PrettyJSONHandler{
		JSONHandler: slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}),
		writer:      w,
	}
}

var ProdLogger = slog.New(slog.NewJSONHandler(os.Stderr, nil))

var DevLogger = slog.New(NewPrettyJSONHandler(os.Stderr, slog.LevelInfo))

// New builds a logger for the given format ("json" or "pretty") and level name.
func New(format, level string, w io.Writer) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(format) {
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})), nil
	case FormatPretty, "":
		return slog.New(NewPrettyJSONHandler(w, lvl)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (expected json or pretty)", format)
	}
}

// ParseLevel maps debug/info/warn/error to a slog level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return lvl, nil
}

// WithRun returns a logger tagged with a fresh run_id, and the id itself.
func WithRun(logger *slog.Logger) (*slog.Logger, string) {
	runID := uuid.NewString()
	return logger.With("run_id", runID), runID
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
