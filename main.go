package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/kickoff-data/pitchsync/internal/align"
	"github.com/kickoff-data/pitchsync/internal/api"
	"github.com/kickoff-data/pitchsync/internal/config"
	"github.com/kickoff-data/pitchsync/internal/dataset"
	"github.com/kickoff-data/pitchsync/internal/ingest"
	"github.com/kickoff-data/pitchsync/internal/match"
	"github.com/kickoff-data/pitchsync/internal/pitch"
	"github.com/kickoff-data/pitchsync/internal/store"
	"github.com/kickoff-data/pitchsync/internal/timeutil"
)

var (
	configPath   = flag.String("config", "", "Path to JSON config file")
	listen       = flag.String("listen", "", "Listen address (overrides config)")
	dbPath       = flag.String("db", "", "Path to sqlite results database (overrides config)")
	trackingPath = flag.String("tracking", "", "Path to tracking CSV to load into the session")
	eventsPath   = flag.String("events", "", "Path to events CSV to load into the session")
	metaPath     = flag.String("metadata", "", "Path to match metadata JSON to load into the session")
	debugMode    = flag.Bool("debug", false, "Enable /debug/ handlers including the SQL browser")
)

// loadOrIngest returns the dataset for record, decoding path through dec
// and persisting it when a path is given, otherwise reloading the copy
// saved by an earlier run.
func loadOrIngest(st *store.SQLiteStore, record store.Record, path string, dec ingest.Decoder) (*dataset.Dataset, error) {
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s file: %w", record, err)
		}
		defer f.Close()
		ds, err := dec.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("decoding %s file: %w", record, err)
		}
		data, err := dataset.Encode(ds)
		if err != nil {
			return nil, fmt.Errorf("encoding %s dataset: %w", record, err)
		}
		if err := st.Save(record, data); err != nil {
			return nil, fmt.Errorf("saving %s dataset: %w", record, err)
		}
		return ds, nil
	}

	data, ok, err := st.Load(record)
	if err != nil {
		return nil, fmt.Errorf("loading %s dataset: %w", record, err)
	}
	if !ok {
		return nil, nil
	}
	return dataset.Decode(data)
}

// loadMetadata mirrors loadOrIngest for the metadata record. Metadata
// is optional; both return values are nil when none was ever loaded.
func loadMetadata(st *store.SQLiteStore, path string) (*match.Metadata, error) {
	var data []byte
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading metadata file: %w", err)
		}
		if err := st.Save(store.RecordMetadata, data); err != nil {
			return nil, fmt.Errorf("saving metadata: %w", err)
		}
	} else {
		var ok bool
		var err error
		data, ok, err = st.Load(store.RecordMetadata)
		if err != nil {
			return nil, fmt.Errorf("loading metadata: %w", err)
		}
		if !ok {
			return nil, nil
		}
	}
	var meta match.Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decoding metadata: %w", err)
	}
	return &meta, nil
}

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *debugMode {
		cfg.Debug = true
	}
	if cfg.Listen == "" {
		log.Fatal("Listen address is required")
	}

	clock := timeutil.RealClock{}
	st, err := store.Open(cfg.DBPath, clock)
	if err != nil {
		log.Fatalf("failed to open results database: %v", err)
	}
	defer st.Close()
	log.Printf("session %s using %s", st.SessionID(), cfg.DBPath)

	meta, err := loadMetadata(st, *metaPath)
	if err != nil {
		log.Fatalf("failed to load metadata: %v", err)
	}

	tracking, err := loadOrIngest(st, store.RecordTracking, *trackingPath, ingest.TrackingCSV())
	if err != nil {
		log.Fatalf("failed to load tracking data: %v", err)
	}
	if tracking == nil {
		log.Fatal("no tracking data: pass -tracking on first run")
	}
	// Positions convert to the canonical pitch only at ingest time; a
	// reloaded dataset is already canonical.
	if *trackingPath != "" {
		conv := pitch.NewConverter(0, 0)
		if meta != nil {
			conv = pitch.NewConverter(meta.PitchLength, meta.PitchWidth)
		}
		tracking = ingest.ConvertTrackingPositions(tracking, conv)
		tracking = ingest.MapPlayerNames(tracking, meta)
		data, err := dataset.Encode(tracking)
		if err != nil {
			log.Fatalf("failed to encode transformed tracking data: %v", err)
		}
		if err := st.Save(store.RecordTracking, data); err != nil {
			log.Fatalf("failed to save transformed tracking data: %v", err)
		}
	}

	events, err := loadOrIngest(st, store.RecordEvents, *eventsPath, ingest.EventsCSV())
	if err != nil {
		log.Fatalf("failed to load events data: %v", err)
	}
	if events == nil {
		log.Fatal("no events data: pass -events on first run")
	}
	eventsView, err := match.NewEventsView(events)
	if err != nil {
		log.Fatalf("invalid events dataset: %v", err)
	}

	persisted, err := store.LoadSyncedResults(st)
	if err != nil {
		log.Fatalf("failed to load synced results: %v", err)
	}
	engine := align.NewEngine(events, tracking, persisted, store.SyncedResultsWriter{Store: st})
	log.Printf("loaded %d events, %d synced", engine.NumEvents(), engine.State().SyncedCount)

	server := api.NewServer(engine, eventsView, meta, st, clock, cfg.OffsetClampRange)

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := server.ServeMux()
		if cfg.Debug {
			if err := st.AttachDebug(mux); err != nil {
				log.Printf("failed to attach debug handlers: %v", err)
			}
		}

		httpServer := &http.Server{
			Addr:    cfg.Listen,
			Handler: server.LoggingMiddleware(mux),
		}

		go func() {
			log.Printf("listening on %s", cfg.Listen)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
	}()

	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
