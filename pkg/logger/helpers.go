package logger

import (
	"context"

	"github.com/rs/zerolog"
)

// LogPage logs one fetched page of search results
func LogPage(l Logger, query string, start uint64, items int) {
	l.DebugWithFields("Search page fetched", map[string]interface{}{
		"query": query,
		"start": start,
		"items": items,
	})
}

// LogDownload logs the outcome of one image fetch
func LogDownload(l Logger, url, path string, err error) {
	fields := map[string]interface{}{
		"url":     url,
		"success": err == nil,
	}
	if path != "" {
		fields["path"] = path
	}

	if err != nil {
		l.WithError(err).WarnWithFields("Download failed", fields)
		return
	}
	l.DebugWithFields("Download completed", fields)
}

// LogComponentStart logs when a component starts
func LogComponentStart(l Logger, component string, config map[string]interface{}) {
	l.WithField("component", component).InfoWithFields("Component started", config)
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger                               { return nil }
