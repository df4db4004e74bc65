package log_test

import (
	"context"
	"testing"

	"github.com/jrife/tally/utils/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithFields(t *testing.T) {
	parent := log.WithFields(context.Background(), zap.String("a", "1"))
	left := log.WithFields(parent, zap.String("b", "2"))
	right := log.WithFields(parent, zap.String("c", "3"))

	if len(log.Fields(parent)) != 1 {
		t.Errorf("expected parent to keep one field, got %d", len(log.Fields(parent)))
	}

	if f := log.Fields(left); len(f) != 2 || f[1].Key != "b" {
		t.Errorf("unexpected fields %#v", f)
	}

	if f := log.Fields(right); len(f) != 2 || f[1].Key != "c" {
		t.Errorf("unexpected fields %#v", f)
	}
}

func TestWithContext(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ctx := log.WithFields(context.Background(), zap.String("principal", "alice"))

	log.WithContext(ctx, zap.New(core)).Debug("hello")

	entries := logs.All()

	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}

	if entries[0].ContextMap()["principal"] != "alice" {
		t.Errorf("expected principal field, got %#v", entries[0].ContextMap())
	}
}
