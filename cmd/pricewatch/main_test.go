package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rickgao/nft-pricewatch/internal/config"
	"github.com/rickgao/nft-pricewatch/internal/writer"
)

func TestNewLogger(t *testing.T) {
	t.Run("json at warn", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := newLogger(config.LoggingConfig{Level: "warn", Format: "json"}, &buf)
		if err != nil {
			t.Fatalf("newLogger failed: %v", err)
		}
		logger.Info("hidden")
		logger.Warn("shown", "source", "getgems")

		out := strings.TrimSpace(buf.String())
		if strings.Contains(out, "hidden") {
			t.Error("info record should be filtered at warn")
		}
		var rec map[string]any
		if err := json.Unmarshal([]byte(out), &rec); err != nil {
			t.Fatalf("output is not JSON: %v\n%s", err, out)
		}
		if rec["source"] != "getgems" {
			t.Errorf("source = %v, want getgems", rec["source"])
		}
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := newLogger(config.LoggingConfig{Level: "debug", Format: "text"}, &buf)
		if err != nil {
			t.Fatalf("newLogger failed: %v", err)
		}
		logger.Debug("cycle complete", "cycle_id", "abc")
		if !strings.Contains(buf.String(), "cycle_id=abc") {
			t.Errorf("unexpected output: %s", buf.String())
		}
	})

	t.Run("bad format", func(t *testing.T) {
		if _, err := newLogger(config.LoggingConfig{Level: "info", Format: "xml"}, &bytes.Buffer{}); err == nil {
			t.Error("expected error for unknown format")
		}
	})

	t.Run("bad level", func(t *testing.T) {
		if _, err := newLogger(config.LoggingConfig{Level: "loud", Format: "text"}, &bytes.Buffer{}); err == nil {
			t.Error("expected error for unknown level")
		}
	})
}

func TestCommissions(t *testing.T) {
	c := commissions(config.CommissionsConfig{
		Getgems:   config.Rate(0.05),
		Fragment:  config.Rate(0.05),
		MarketApp: config.Rate(0),
	})
	if c.Combined().String() != "0.1" {
		t.Errorf("Combined = %s, want 0.1", c.Combined())
	}
	if !c.MarketApp.IsZero() {
		t.Errorf("MarketApp = %s, want 0", c.MarketApp)
	}
}

func TestBuildSink_FileOnly(t *testing.T) {
	cfg := config.Default()
	cfg.Output.Path = t.TempDir() + "/nft_data.json"

	sink, closeSinks, err := buildSink(context.Background(), cfg, nil, nil)
	if err != nil {
		t.Fatalf("buildSink failed: %v", err)
	}
	defer closeSinks()

	fs, ok := sink.(*writer.FileSink)
	if !ok {
		t.Fatalf("sink = %T, want *writer.FileSink", sink)
	}
	if fs.Path() != cfg.Output.Path {
		t.Errorf("Path = %q, want %q", fs.Path(), cfg.Output.Path)
	}
}
