// Command import loads a directory of PDFs into the library.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JaimeStill/flipbook/internal/config"
	"github.com/JaimeStill/flipbook/internal/documents"
	"github.com/JaimeStill/flipbook/internal/infrastructure"
	"github.com/JaimeStill/flipbook/internal/store"
	"github.com/JaimeStill/flipbook/internal/thumbnail"
)

func main() {
	var (
		dir     = flag.String("dir", "", "Directory of PDF files to import")
		workers = flag.Int("workers", 4, "Concurrent thumbnail workers")
	)
	flag.Parse()

	if *dir == "" {
		fmt.Println("usage: import -dir <path> [-workers n]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed: ", err)
	}

	infra, err := infrastructure.New(cfg)
	if err != nil {
		log.Fatal("infrastructure init failed: ", err)
	}
	if err := infra.Start(); err != nil {
		log.Fatal("infrastructure start failed: ", err)
	}
	defer infra.Lifecycle.Shutdown(cfg.ShutdownTimeoutDuration())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	docs := documents.New(
		store.New(infra.Database, infra.Storage, infra.Logger),
		thumbnail.New(&cfg.Thumbnail, infra.Logger),
		infra.Logger,
	)
	if err := docs.Load(ctx); err != nil {
		log.Fatal("library load failed: ", err)
	}

	imp := &Importer{
		Docs:    docs,
		MaxSize: cfg.Storage.MaxUploadSizeBytes(),
		Workers: *workers,
		Logger:  infra.Logger,
	}

	start := time.Now()
	report, err := imp.Run(ctx, *dir)
	if err != nil {
		log.Fatal("import failed: ", err)
	}

	fmt.Printf("imported %d, skipped %d, failed %d in %s\n",
		len(report.Imported), len(report.Skipped), len(report.Failed), time.Since(start).Round(time.Millisecond))
	if len(report.Failed) > 0 {
		os.Exit(1)
	}
}
