package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/jask/bahaterm/internal/bahamut"
	"github.com/jask/bahaterm/internal/config"
	"github.com/jask/bahaterm/internal/database"
	"github.com/jask/bahaterm/internal/database/repository"
	"github.com/jask/bahaterm/internal/fetch"
	"github.com/jask/bahaterm/internal/logging"
	"github.com/jask/bahaterm/internal/service"
	"github.com/jask/bahaterm/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger, logFile, err := logging.Open(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("log: %w", err)
	}
	defer logFile.Close()

	if !config.Exists() {
		if err := config.Save(cfg); err != nil {
			logger.Warn("write default config", "path", config.Path(), "err", err)
		} else {
			logger.Info("wrote default config", "path", config.Path())
		}
	}

	if err := database.RunMigrations(cfg.Database.Path); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	// services
	history := &service.HistoryService{Repo: repository.NewHistoryRepo(db), Limit: cfg.UI.HistoryLimit}
	maintenance := &service.MaintenanceService{DB: db}

	client, err := bahamut.NewClient(cfg.Source.BaseURL, cfg.Source.Timeout, cfg.Source.UserAgent)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}
	dispatcher, fetcher := fetch.New(fetch.Sources{
		Boards:   bahamut.NewBoardSource(client),
		Posts:    bahamut.NewPostSource(client),
		Comments: bahamut.NewCommentSource(client),
		Search:   bahamut.NewSearcher(client),
	}, logger)

	logger.Info("starting", "base_url", client.BaseURL.String(), "db", cfg.Database.Path)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return dispatcher.Run(gctx)
	})
	g.Go(func() error {
		defer fetcher.Close()
		p := tea.NewProgram(tui.New(gctx, fetcher,
			tui.Services{History: history, Maintenance: maintenance},
			cfg.UI,
		), tea.WithAltScreen(), tea.WithContext(gctx))
		_, err := p.Run()
		if serr := fetcher.Shutdown(); serr != nil {
			logger.Warn("shutdown dispatcher", "err", serr)
		}
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error("exit", "err", err)
		return err
	}
	logger.Info("bye")
	return nil
}
