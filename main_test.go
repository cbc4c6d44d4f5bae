package main

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/arkantrust/payment-api/backend/config"
	"github.com/arkantrust/payment-api/backend/store"
)

func TestServeShutsDownOnCancel(t *testing.T) {
	cfg := config.Config{
		Port:            "0",
		Store:           store.Config{Driver: store.DriverBolt, BoltPath: filepath.Join(t.TempDir(), "main.db")},
		ShutdownTimeout: time.Second,
	}
	log := logrus.New()
	log.SetOutput(io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, cfg, log) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}

func TestServeStoreOpenFailure(t *testing.T) {
	cfg := config.Config{Port: "0", Store: store.Config{Driver: "mongo"}}
	log := logrus.New()
	log.SetOutput(io.Discard)

	if err := serve(context.Background(), cfg, log); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestRootCmdRejectsBadFlags(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--store", "mongo"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for unknown store driver")
	}
}
