// Command imgsweep deletes stored clipboard images no history entry or
// quick text references anymore. Run it against a data directory while the
// main application is stopped.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"quickclipboard/imagestore"
	"quickclipboard/logging"
	"quickclipboard/storage"
)

func main() {
	dataDir := flag.String("data-dir", "", "Application data directory (required)")
	dryRun := flag.Bool("dry-run", false, "List unreferenced images without deleting them")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn or error")
	flag.Parse()

	logging.Setup(*logLevel, "")

	if *dataDir == "" {
		flag.Usage()
		os.Exit(2)
	}

	images, err := imagestore.New(*dataDir)
	if err != nil {
		log.Fatalf("failed to open image store: %v", err)
	}
	db, err := storage.Open(filepath.Join(*dataDir, storage.DBFileName))
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	history, err := storage.NewHistory(db, 0, images)
	if err != nil {
		log.Fatalf("failed to open history: %v", err)
	}
	quickTexts := storage.NewQuickTexts(db, images)

	used, err := history.ImageIDs(ctx)
	if err != nil {
		log.Fatalf("failed to collect history image ids: %v", err)
	}
	fromQuick, err := quickTexts.ImageIDs(ctx)
	if err != nil {
		log.Fatalf("failed to collect quick text image ids: %v", err)
	}
	for id := range fromQuick {
		used[id] = struct{}{}
	}

	if *dryRun {
		unused, err := images.Unreferenced(used)
		if err != nil {
			log.Fatalf("failed to scan image directory: %v", err)
		}
		for _, id := range unused {
			fmt.Println(id)
		}
		fmt.Printf("%d unreferenced image(s)\n", len(unused))
		return
	}

	removed, err := images.GC(used)
	if err != nil {
		log.Fatalf("image sweep failed: %v", err)
	}
	fmt.Printf("removed %d unreferenced image(s)\n", removed)
}
