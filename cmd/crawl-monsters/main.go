// Package main crawls the creature pages listed in a links file and writes
// their parsed statblocks.
package main

import (
	"context"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/cory-johannsen/srdcrawl/internal/cli"
	"github.com/cory-johannsen/srdcrawl/internal/fetch"
	"github.com/cory-johannsen/srdcrawl/internal/importer"
	"github.com/cory-johannsen/srdcrawl/internal/importer/monster"
	"github.com/cory-johannsen/srdcrawl/internal/statblock"
	"github.com/cory-johannsen/srdcrawl/internal/storage"
	"github.com/cory-johannsen/srdcrawl/internal/vocab"
)

func main() {
	cmd := cli.NewCommand("crawl-monsters", "monster links", "out path")
	configPath := cmd.Flags.String("config", "", "path to configuration file")

	os.Exit(cmd.Run(os.Args[1:], os.Stderr, func(args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		return run(ctx, *configPath, args[0], args[1])
	}))
}

func run(ctx context.Context, configPath, linksPath, outPath string) error {
	cfg, logger, runID, err := cli.Setup("crawl-monsters", configPath)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	vocabulary, err := vocab.Load()
	if err != nil {
		return err
	}

	store, closeStore, err := cli.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	pipeline := monster.NewPipeline(linksPath, cfg.Crawl.SkipPages,
		fetch.New(cfg.Crawl, logger), statblock.NewParser(vocabulary))
	sinks := cli.Sinks(cfg, outPath, store, storage.KindMonster, runID, monster.Name)

	logger.Info("crawling monsters", zap.String("links", linksPath), zap.String("out", outPath))
	_, err = importer.New[string, statblock.Monster](pipeline, logger, sinks...).Run(ctx)
	return err
}
