package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"switchplane/internal/cnam"
	"switchplane/internal/config"
	"switchplane/internal/configuration"
	"switchplane/internal/db"
	"switchplane/internal/dialplan"
	"switchplane/internal/directory"
	"switchplane/internal/httpapi"
	"switchplane/internal/store"
)

func main() {
	defaultsPath := flag.String("defaults", "", "optional YAML defaults file")
	flag.Parse()

	cfg, err := config.Load(*defaultsPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	pool, err := db.NewPool(cfg.StoreURI)
	if err != nil {
		log.Fatalf("store connect: %v", err)
	}
	defer pool.Close()

	st := store.NewPostgres(pool)
	cnamClient := cnam.NewClient(cnam.Config{
		ProjectID: cfg.CNAMProjectID,
		APIToken:  cfg.CNAMAPIToken,
		SpaceHost: cfg.CNAMSpaceHost,
		Timeout:   cfg.CNAMTimeout,
	})

	dp := dialplan.NewResolver(st, cnamClient)
	dir := directory.NewResolver(st)
	cr := configuration.NewResolver(st)

	router := httpapi.NewRouter(cfg, pool, dp, dir, cr)

	srv := &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("switchplane listening on %s", cfg.ListenAddr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
}
