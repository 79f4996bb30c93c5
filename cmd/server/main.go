package main

import (
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/handlers"

	"drawpoker/config"
	"drawpoker/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// optional seat-count argument overrides the environment
	if len(os.Args) > 1 {
		seats, err := strconv.Atoi(os.Args[1])
		if err != nil {
			logger.Error("seat count must be an integer", "arg", os.Args[1])
			os.Exit(1)
		}
		cfg.Seats = seats
		if err := cfg.Validate(); err != nil {
			logger.Error("invalid seat count", "error", err)
			os.Exit(1)
		}
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		logger.Error("failed to listen", "addr", cfg.Addr, "error", err)
		os.Exit(1)
	}

	feed := server.NewFeed()
	if cfg.StatusAddr != "" {
		go func() {
			logger.Info("status endpoint listening", "addr", cfg.StatusAddr)
			err := http.ListenAndServe(cfg.StatusAddr, handlers.LoggingHandler(os.Stderr, feed.Handler()))
			logger.Error("status endpoint stopped", "error", err)
		}()
	}

	session, err := server.NewSession(cfg, ln, logger, feed)
	if err != nil {
		logger.Error("failed to create session", "error", err)
		os.Exit(1)
	}

	if err := session.Run(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
