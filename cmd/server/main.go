package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"voxelforge.dev/internal/persistence/chunkdb"
	"voxelforge.dev/internal/sim/tuning"
	"voxelforge.dev/internal/sim/world"
	"voxelforge.dev/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml")
		seed       = flag.Int64("seed", 0, "world seed override (0 keeps the configured seed)")
		disableDB  = flag.Bool("disable_db", false, "disable chunk persistence (edits are lost on unload)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tune, err := tuning.Load(strings.TrimSpace(*tuningPath))
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", *tuningPath)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}
	if *seed != 0 {
		tune.Seed = *seed
	}

	var persist world.Persistence
	var db *chunkdb.Store
	if !*disableDB {
		db, err = chunkdb.Open(filepath.Join(*dataDir, "chunks.db"))
		if err != nil {
			logger.Fatalf("open chunk db: %v", err)
		}
		defer db.Close()
		persist = db
	}

	w, err := world.New(tune, persist, nil, logger)
	if err != nil {
		logger.Fatalf("world: %v", err)
	}
	hub := ws.NewHub(w.Store(), w.TickCount, logger)
	w.SetMeshConsumer(hub)

	ctx, cancel := signalContext()
	defer cancel()

	worldDone := make(chan struct{})
	go func() {
		defer close(worldDone)
		if err := w.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("world stopped: %v", err)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/v1/ws", ws.NewServer(w, hub, logger).Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s (seed %d, chunk size %d)", *addr, tune.Seed, tune.ChunkSize)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}

	// The world loop owns the store; flush only after it has stopped.
	<-worldDone
	if persist != nil {
		if n := w.Store().FlushModified(); n > 0 {
			logger.Printf("flushed %d modified chunks", n)
		}
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
