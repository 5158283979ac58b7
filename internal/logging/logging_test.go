package logging

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewOperationErrorNil(t *testing.T) {
	if err := NewOperationError("op", "req", nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestOperationErrorUnwrap(t *testing.T) {
	base := errors.New("boom")
	err := NewOperationError("faceapi.detect", "req-1", base)

	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to match base")
	}
	if got := err.Error(); got != "faceapi.detect (request_id=req-1): boom" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := NewOperationError("storage.upload", "", base).Error(); got != "storage.upload: boom" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	if _, err := NewLogger("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
	logger, err := NewLogger("debug")
	if err != nil {
		t.Fatalf("expected logger, got error: %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("expected debug level to be enabled")
	}
}

func TestWithOperationAddsFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	WithOperation(zap.New(core), "usecase.insult", "req-9").Info("done")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["operation"] != "usecase.insult" || ctx["request_id"] != "req-9" {
		t.Fatalf("unexpected fields: %v", ctx)
	}
}
