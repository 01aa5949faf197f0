package main

import (
	"io"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
)

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	lv, err := parseLogLevel(level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: lv}
	switch format {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, goerr.Wrap(ErrInvalidConfig, "unknown log format", goerr.V("log_format", format))
	}
}
