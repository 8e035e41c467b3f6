// Drive CSV Summary Pipeline
// Copyright (C) 2025  Drive CSV Summary Pipeline Contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/drive-summary-pipeline/internal/config"
	"github.com/drive-summary-pipeline/internal/gemini"
	"github.com/drive-summary-pipeline/internal/health"
	"github.com/drive-summary-pipeline/internal/pipeline"
	"github.com/drive-summary-pipeline/internal/pool"
	"github.com/drive-summary-pipeline/internal/scheduler"
	"github.com/drive-summary-pipeline/internal/sink"
	"github.com/drive-summary-pipeline/internal/source"
	"github.com/drive-summary-pipeline/internal/summarizer"
	"github.com/sirupsen/logrus"
)

func buildSummarizer(cfg *config.Config, client gemini.ClientInterface) summarizer.Summarizer {
	if cfg.Summarizer.Mode == config.ModeAgent {
		return summarizer.NewAgent(client, cfg.Gemini.Temperature, cfg.Summarizer.MaxIterations)
	}
	return summarizer.NewDirect(client, cfg.Gemini.Temperature)
}

func main() {
	var configPath = flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %v", err)
	}
	logrus.SetLevel(level)

	logrus.Info("Starting Drive CSV Summary Pipeline")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize sources
	sources := make([]source.Source, 0)

	if cfg.Drive.Enabled {
		driveSource, err := source.NewDriveSource(ctx, cfg.Drive)
		if err != nil {
			logrus.Fatalf("Failed to create Google Drive source: %v", err)
		}
		sources = append(sources, driveSource)
	}

	if cfg.GitHub.Enabled {
		githubSource, err := source.NewGitHubSource(cfg.GitHub)
		if err != nil {
			logrus.Fatalf("Failed to create GitHub source: %v", err)
		}
		sources = append(sources, githubSource)
	}

	if cfg.LocalFolders.Enabled {
		localSource, err := source.NewLocalFolderSource(cfg.LocalFolders)
		if err != nil {
			logrus.Fatalf("Failed to create local folder source: %v", err)
		}
		sources = append(sources, localSource)
	}

	if len(sources) == 0 {
		logrus.Fatal("No sources enabled, nothing to do")
	}

	// Initialize Gemini client and summarizer
	client := gemini.NewClient(cfg.Gemini.Endpoint, cfg.Gemini.Model, cfg.Gemini.APIKey, cfg.Gemini.Timeout)
	sum := buildSummarizer(cfg, client)
	logrus.Infof("Summarizer mode: %s (model: %s)", cfg.Summarizer.Mode, cfg.Gemini.Model)

	// Open output sink
	writer, err := sink.NewCSVWriter(cfg.Output.Path, cfg.TextColumn())
	if err != nil {
		logrus.Fatalf("Failed to open output file: %v", err)
	}
	defer writer.Close()

	// Initialize worker pool and pipeline manager
	workers := pool.New(cfg.Summarizer.Workers, cfg.Summarizer.TaskTimeout)
	manager, err := pipeline.NewManager(sum, writer, workers, cfg.Storage)
	if err != nil {
		logrus.Fatalf("Failed to create pipeline manager: %v", err)
	}

	// Initialize scheduler
	sched := scheduler.New(cfg.Schedule.Interval, sources, manager)

	// Start health check server
	healthServer := health.NewServer(8080, manager.Stats)
	go func() {
		if err := healthServer.Start(); err != nil {
			logrus.Errorf("Health server error: %v", err)
		}
	}()

	// Start scheduler
	go sched.Start(ctx)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Run initial pipeline cycle
	logrus.Info("Running initial pipeline cycle...")
	if err := sched.RunOnce(); err != nil {
		logrus.Errorf("Initial pipeline run failed: %v", err)
	}

	// Wait for shutdown signal
	<-sigChan
	logrus.Info("Shutting down...")
	cancel()

	// Stop health server
	healthCtx, healthCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer healthCancel()
	healthServer.Stop(healthCtx)

	// Let in-flight summarizations finish before the sink closes
	workers.Wait()
}
