package slogcustom

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"strings"

	"github.com/fatih/color"
)

// CustomHandler пишет записи slog в одну цветную строку:
// время, уровень, сообщение и атрибуты key=value.
type CustomHandler struct {
	l      *log.Logger
	level  slog.Leveler
	attrs  []slog.Attr
	prefix string // группа для новых атрибутов
}

func NewCustomHandler(out io.Writer, level slog.Leveler) *CustomHandler {
	return &CustomHandler{
		l:     log.New(out, "", 0),
		level: level,
	}
}

func (c *CustomHandler) Handle(_ context.Context, r slog.Record) error {
	level := r.Level.String() + ":"

	switch {
	case r.Level >= slog.LevelError:
		level = color.RedString(level)
	case r.Level >= slog.LevelWarn:
		level = color.YellowString(level)
	case r.Level >= slog.LevelInfo:
		level = color.HiBlueString(level)
	default:
		level = color.MagentaString(level)
	}

	var attrs strings.Builder
	for _, a := range c.attrs {
		writeAttr(&attrs, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&attrs, c.prefix, a)
		return true
	})

	c.l.Println(
		r.Time.Format("15:04:05.000"),
		level,
		r.Message,
		strings.TrimSuffix(attrs.String(), " "),
	)
	return nil
}

func (c *CustomHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return c
	}

	handler := *c
	handler.attrs = append([]slog.Attr(nil), c.attrs...)
	for _, a := range attrs {
		a.Key = c.prefix + a.Key
		handler.attrs = append(handler.attrs, a)
	}

	return &handler
}

func (c *CustomHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return c
	}

	handler := *c
	handler.prefix = c.prefix + name + "."

	return &handler
}

func (c *CustomHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= c.level.Level()
}

func writeAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		groupPrefix := prefix
		if a.Key != "" {
			groupPrefix = prefix + a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			writeAttr(b, groupPrefix, ga)
		}
		return
	}

	b.WriteString(color.GreenString(prefix + a.Key))
	b.WriteString("=")
	b.WriteString(fmt.Sprint(a.Value.Any()))
	b.WriteString(" ")
}
