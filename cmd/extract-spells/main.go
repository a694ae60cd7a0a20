// Package main extracts raw spell records from a saved spell list page.
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
)

func main() {
	cmd := cli.NewCommand("extract-spells", "html file", "output file")
	configPath := cmd.Flags.String("config", "", "path to configuration file")

	os.Exit(cmd.Run(os.Args[1:], os.Stderr, func(args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		return run(ctx, *configPath, args[0], args[1])
	}))
}

func run(ctx context.Context, configPath, htmlPath, outPath string) error {
	cfg, logger, _, err := cli.Setup("extract-spells", configPath)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("extracting spells", zap.String("html", htmlPath), zap.String("out", outPath))
	imp := importer.New[spell.RawSpell, spell.RawSpell](spells.NewExtractPipeline(htmlPath), logger,
		importer.NewFileSink[spell.RawSpell](outPath, cfg.Output.Format))
	_, err = imp.Run(ctx)
	return err
}
