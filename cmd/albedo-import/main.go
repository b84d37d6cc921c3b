// Command albedo-import loads GEE export CSVs into the relational
// mirror (PostgreSQL or SQLite). With -watch it keeps running and
// re-imports whenever new export files land in the directory.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/database"
	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/gee"
	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/log"
	"github.com/tofunori/saskatchewan-glacier-albedo-analysis/internal/types"
)

func main() {
	var (
		csvPath    = flag.String("csv", "", "Single export CSV to import")
		dir        = flag.String("dir", "", "Directory of export CSVs to import")
		product    = flag.String("product", "MCD43A3", "Satellite product: MCD43A3 or MOD10A1")
		zone       = flag.String("zone", "all", "Elevation zone label for the imported rows")
		minPixels  = flag.Int("min-pixels", 5, "Minimum pixel count per daily class observation")
		sqlitePath = flag.String("sqlite", "", "SQLite results store path")
		pgConn     = flag.String("postgres", "", "PostgreSQL connection string")
		watch      = flag.Bool("watch", false, "Watch -dir for new CSV files and import them as they arrive")
		debug      = flag.Bool("debug", false, "Turn on debugging output")
	)
	flag.Parse()

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if (*csvPath == "") == (*dir == "") {
		log.Fatal("exactly one of -csv or -dir is required")
	}
	if *sqlitePath == "" && *pgConn == "" {
		log.Fatal("a storage backend is required: -sqlite or -postgres")
	}
	if *watch && *dir == "" {
		log.Fatal("-watch requires -dir")
	}

	var stores []database.Store
	if *pgConn != "" {
		client := database.NewClient(*pgConn, log.GetSugaredLogger())
		if err := client.Connect(); err != nil {
			log.Fatalf("connecting to PostgreSQL: %v", err)
		}
		stores = append(stores, client)
	}
	if *sqlitePath != "" {
		store, err := database.OpenSQLite(*sqlitePath)
		if err != nil {
			log.Fatalf("opening SQLite store: %v", err)
		}
		defer store.Close()
		stores = append(stores, store)
	}

	opts := gee.ReaderOptions{
		Product:       types.Product(*product),
		Zone:          types.ElevationZone(*zone),
		MinPixelCount: *minPixels,
	}

	importOne := func(path string) {
		obs, err := gee.ReadFile(path, opts)
		if err != nil {
			log.Errorf("importing %s: %v", path, err)
			return
		}
		for _, s := range stores {
			if err := s.StoreObservations(obs); err != nil {
				log.Errorf("storing %s: %v", path, err)
				return
			}
		}
		log.Infof("imported %s: %d daily records", path, len(obs))
	}

	if *csvPath != "" {
		importOne(*csvPath)
		return
	}

	entries, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatalf("reading %s: %v", *dir, err)
	}
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			importOne(filepath.Join(*dir, e.Name()))
		}
	}

	if !*watch {
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Fatalf("creating watcher: %v", err)
	}
	defer watcher.Close()
	if err := watcher.Add(*dir); err != nil {
		log.Fatalf("watching %s: %v", *dir, err)
	}
	log.Infof("watching %s for new export files", *dir)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".csv") {
				continue
			}
			// exports are written incrementally; give the writer a
			// moment to finish before reading
			time.Sleep(500 * time.Millisecond)
			importOne(event.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Errorf("watcher error: %v", err)
		case <-sigs:
			log.Info("shutdown signal received")
			return
		}
	}
}
