// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log wraps the go-ethereum structured logger. Loggers created by
// WithContext resolve the root logger on every call, so package level loggers
// follow SetDefault.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	ethlog "github.com/ethereum/go-ethereum/log"
)

type Logger = ethlog.Logger

const (
	LevelTrace = ethlog.LevelTrace
	LevelDebug = ethlog.LevelDebug
	LevelInfo  = ethlog.LevelInfo
	LevelWarn  = ethlog.LevelWarn
	LevelError = ethlog.LevelError
	LevelCrit  = ethlog.LevelCrit
)

// Root returns the root logger.
func Root() Logger { return ethlog.Root() }

// SetDefault replaces the root logger.
func SetDefault(l Logger) { ethlog.SetDefault(l) }

// NewLogger creates a logger writing to h.
func NewLogger(h slog.Handler) Logger { return ethlog.NewLogger(h) }

// DiscardHandler drops every record.
func DiscardHandler() slog.Handler { return ethlog.DiscardHandler() }

// FromVerbosity maps the legacy 0-5 verbosity to a level, 3 being info.
func FromVerbosity(v int) slog.Level { return ethlog.FromLegacyLevel(v) }

// NewHandler creates a handler for one of the formats "terminal", "json" or "logfmt".
func NewHandler(format string, wr io.Writer, level slog.Level, color bool) (slog.Handler, error) {
	switch strings.ToLower(format) {
	case "", "terminal":
		return ethlog.NewTerminalHandlerWithLevel(wr, level, color), nil
	case "json":
		return ethlog.JSONHandlerWithLevel(wr, level), nil
	case "logfmt":
		return ethlog.LogfmtHandlerWithLevel(wr, level), nil
	}
	return nil, fmt.Errorf("unknown log format %q", format)
}

// WithContext returns a logger carrying ctx bound to whatever the root logger is at call time.
func WithContext(ctx ...any) Logger {
	return &lazyLogger{ctx: ctx}
}

type lazyLogger struct {
	ctx []any
}

func (l *lazyLogger) get() Logger { return ethlog.Root().With(l.ctx...) }

func (l *lazyLogger) With(ctx ...any) Logger {
	return &lazyLogger{ctx: append(append([]any{}, l.ctx...), ctx...)}
}

func (l *lazyLogger) New(ctx ...any) Logger { return l.With(ctx...) }

func (l *lazyLogger) Log(level slog.Level, msg string, ctx ...any) { l.get().Log(level, msg, ctx...) }
func (l *lazyLogger) Trace(msg string, ctx ...any)                 { l.get().Trace(msg, ctx...) }
func (l *lazyLogger) Debug(msg string, ctx ...any)                 { l.get().Debug(msg, ctx...) }
func (l *lazyLogger) Info(msg string, ctx ...any)                  { l.get().Info(msg, ctx...) }
func (l *lazyLogger) Warn(msg string, ctx ...any)                  { l.get().Warn(msg, ctx...) }
func (l *lazyLogger) Error(msg string, ctx ...any)                 { l.get().Error(msg, ctx...) }
func (l *lazyLogger) Crit(msg string, ctx ...any)                  { l.get().Crit(msg, ctx...) }

func (l *lazyLogger) Write(level slog.Level, msg string, attrs ...any) {
	l.get().Write(level, msg, attrs...)
}

func (l *lazyLogger) Enabled(ctx context.Context, level slog.Level) bool {
	return l.get().Enabled(ctx, level)
}

func (l *lazyLogger) Handler() slog.Handler { return l.get().Handler() }
