// Package main structures raw spell records using the page and rename
// tables.
package main

import (
	"context"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/cory-johannsen/srdcrawl/internal/cli"
	"github.com/cory-johannsen/srdcrawl/internal/importer"
	"github.com/cory-johannsen/srdcrawl/internal/importer/spells"
	"github.com/cory-johannsen/srdcrawl/internal/spell"
	"github.com/cory-johannsen/srdcrawl/internal/storage"
	"github.com/cory-johannsen/srdcrawl/internal/vocab"
)

func main() {
	cmd := cli.NewCommand("clean-spells", "input file", "output file")
	configPath := cmd.Flags.String("config", "", "path to configuration file")
	pagesPath := cmd.Flags.String("pages", "", "spell page table (overrides spells.pages_path)")
	renamesPath := cmd.Flags.String("renames", "", "spell rename table (overrides spells.renames_path)")

	os.Exit(cmd.Run(os.Args[1:], os.Stderr, func(args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		return run(ctx, *configPath, *pagesPath, *renamesPath, args[0], args[1])
	}))
}

func run(ctx context.Context, configPath, pagesPath, renamesPath, inPath, outPath string) error {
	cfg, logger, runID, err := cli.Setup("clean-spells", configPath)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if pagesPath == "" {
		pagesPath = cfg.Spells.PagesPath
	}
	if renamesPath == "" {
		renamesPath = cfg.Spells.RenamesPath
	}
	pages, err := spell.LoadTable(pagesPath)
	if err != nil {
		return err
	}
	renames, err := spell.LoadTable(renamesPath)
	if err != nil {
		return err
	}
	vocabulary, err := vocab.Load()
	if err != nil {
		return err
	}

	store, closeStore, err := cli.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	pipeline := spells.NewCleanPipeline(inPath, spell.NewCleaner(pages, renames, vocabulary.ClassAbbreviations))
	sinks := cli.Sinks(cfg, outPath, store, storage.KindSpell, runID, spells.Name)

	logger.Info("cleaning spells",
		zap.String("in", inPath),
		zap.String("out", outPath),
		zap.Int("pages", len(pages)),
		zap.Int("renames", len(renames)))
	_, err = importer.New[spell.RawSpell, spell.Spell](pipeline, logger, sinks...).Run(ctx)
	return err
}
