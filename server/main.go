package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"blackjack-helper/server/counter"
	"blackjack-helper/server/llm"
	"blackjack-helper/server/session"
	"blackjack-helper/server/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	_ = godotenv.Load()

	// Load API key from a file if present
	loadAPIKeyFromSecret()

	var migrate, resetCount bool
	for _, a := range os.Args[1:] {
		switch a {
		case "--migrate":
			migrate = true
		case "--reset-count":
			resetCount = true
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if migrate {
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			log.Println("DATABASE_URL not set; sqlite and file stores need no migration")
			return
		}
		db, err := store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal(err)
		}
		defer db.Close()
		if err := store.Migrate(ctx, db); err != nil {
			log.Fatal(err)
		}
		log.Println("migrated")
		return
	}

	backend, err := store.OpenBackend(ctx, cfg.storeConfig())
	if err != nil {
		log.Fatal(err)
	}
	defer backend.Close()
	count := counter.Open(ctx, backend)
	log.Printf("running count %d (%s store)", count.Current(), backend.Kind())

	if resetCount {
		if _, err := count.Reset(ctx); err != nil {
			log.Fatal(err)
		}
		log.Println("running count reset")
		return
	}

	api := &API{
		Analyzer: session.New(count),
		Count:    count,
		Cfg:      cfg,
	}
	if rec, err := llm.NewRecognizer(cfg.VisionModel); err != nil {
		log.Printf("frame recognition disabled: %v", err)
	} else {
		api.Vision = rec
		log.Printf("frame recognition via %s", rec.Model())
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      Router(api),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RecognizeTimeout + 15*time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("listening on http://localhost:%s (Ctrl+C to stop)", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
