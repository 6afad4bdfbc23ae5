package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"zipcodes/internal/api"
	"zipcodes/internal/dataset"
	"zipcodes/internal/zipcode"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	addr := flag.String("addr", getEnv("ADDR", ":8080"), "Address to listen on")
	flag.Parse()

	// Decode the embedded dataset up front so a corrupt build fails at boot.
	start := time.Now()
	records, err := dataset.Load()
	if err != nil {
		log.Fatalf("Failed to load zipcode dataset: %v", err)
	}
	log.Printf("Loaded %d zipcode records in %s", len(records), time.Since(start).Round(time.Millisecond))

	server := api.NewServer(zipcode.ListAll())

	mux := chi.NewMux()
	h := api.HandlerFromMux(server, mux)

	s := &http.Server{
		Addr:              *addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Server listening addr=%s", *addr)
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
