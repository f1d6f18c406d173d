package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesServiceField(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("notes-web", "info", "json", &buf)

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-1")
	WithRequestID(ctx, log).Info("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "notes-web", entry["service"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "info", entry["level"])
}

func TestNewLevelFallback(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, NewWithOutput("svc", "debug", "json", &bytes.Buffer{}).GetLevel())
	assert.Equal(t, logrus.InfoLevel, NewWithOutput("svc", "chatty", "json", &bytes.Buffer{}).GetLevel())
}
