/*
main.go - Projection service entry point

PURPOSE:
  Serves the loaded book over HTTP: browse treaties, trigger projection
  runs, page through result cells. The book is loaded once at startup
  from the same configuration the batch entry point uses.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load run configuration and reference tables
  3. Load the latest experience extract (completeness-checked)
  4. Configure the chi router
  5. Start the server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -config  Run configuration file (default: run.yaml)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Exit
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/treaty-engine/api"
	"github.com/warp/treaty-engine/cashflow"
	"github.com/warp/treaty-engine/config"
	"github.com/warp/treaty-engine/refdata"
	"github.com/warp/treaty-engine/store/sqlite"
)

func main() {
	port := flag.Int("port", 8080, "HTTP server port")
	configPath := flag.String("config", "run.yaml", "run configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	engine, err := cfg.Engine()
	if err != nil {
		log.Fatalf("Failed to build engine: %v", err)
	}

	book, err := loadBook(cfg)
	if err != nil {
		log.Fatalf("Failed to load inputs: %v", err)
	}
	log.Printf("Loaded book of %d treaties", len(book.Treaties))

	handler := api.NewHandler(engine, book)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", *port),
		Handler: router,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	done := make(chan struct{})
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
		close(done)
	}()

	log.Printf("Projection service listening on :%d", *port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
	<-done
}

// loadBook assembles the engine inputs from the configured sources.
func loadBook(cfg *config.Config) (cashflow.Inputs, error) {
	var book cashflow.Inputs
	var err error

	if book.Treaties, err = refdata.LoadTreaties(cfg.Inputs.Positions); err != nil {
		return book, err
	}
	if book.Factors, err = refdata.LoadDevelopmentFactors(cfg.Inputs.Factors); err != nil {
		return book, err
	}
	translation, err := refdata.LoadKeyTranslation(cfg.Inputs.Translation)
	if err != nil {
		return book, err
	}
	if cfg.Inputs.Overrides != "" {
		if book.Overrides, err = refdata.LoadOverrides(cfg.Inputs.Overrides); err != nil {
			return book, err
		}
	}

	store, err := sqlite.New(cfg.Inputs.ExperienceDB)
	if err != nil {
		return book, err
	}
	defer store.Close()

	book.Experience, _, err = store.LoadLatest(context.Background(), translation)
	return book, err
}
