package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/avernet/melodex/internal/catalog"
	"github.com/avernet/melodex/internal/config"
	"github.com/avernet/melodex/internal/engine"
	"github.com/avernet/melodex/internal/metadata"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// stdout carries the protocol, so logs go to stderr
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	})))

	dbPath := cfg.DatabasePath
	if dbPath == "" {
		dbPath, err = catalog.DefaultPath()
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
	}

	cat, err := catalog.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open catalogue: %w", err)
	}
	slog.Info("catalogue open", "path", dbPath)

	eng := engine.New(cat, metadata.NewExtractor(), cfg.ScanWorkers)
	return serve(eng, os.Stdin, os.Stdout)
}

// serve bridges newline-delimited JSON requests on in to correlated JSON
// responses on out, until EOF or a close command shuts the engine down.
func serve(eng *engine.Engine, in *os.File, out *os.File) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	w := bufio.NewWriter(out)
	enc := json.NewEncoder(w)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req engine.Request
		if err := json.Unmarshal(line, &req); err != nil {
			slog.Warn("malformed request line", "err", err)
			continue
		}

		res := eng.Dispatch(req)
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
		if err := w.Flush(); err != nil {
			return fmt.Errorf("flush response: %w", err)
		}

		if req.Type == "close" {
			<-eng.Done()
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read requests: %w", err)
	}

	// EOF without an explicit close: shut down cleanly
	return eng.Close()
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
