package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hammamikhairi/simmr/internal/api"
	"github.com/hammamikhairi/simmr/internal/conversation"
	"github.com/hammamikhairi/simmr/internal/engine"
	"github.com/hammamikhairi/simmr/internal/friends"
	"github.com/hammamikhairi/simmr/internal/idle"
	"github.com/hammamikhairi/simmr/internal/storylog"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateServe(); err != nil {
		return err
	}
	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	be, err := openBackend(ctx, false)
	if err != nil {
		return err
	}
	defer be.Close()

	authSvc, err := be.authService()
	if err != nil {
		return err
	}
	pantrySvc, err := be.pantryService()
	if err != nil {
		return err
	}
	images, err := imageStore(ctx)
	if err != nil {
		return err
	}

	eng := engine.New(be.recipes, be.sessions, log, engine.WithNarrator(narrator(ctx)))
	srv := api.NewServer(api.Deps{
		Auth:      authSvc,
		Recipes:   be.recipes,
		Catalogue: be.recipes,
		Pantry:    pantrySvc,
		Engine:    eng,
		Parser:    conversation.NewKeywordParser(log),
		StoryLogs: storylog.NewService(be.storyLogs, images, be.recipes, log),
		Friends:   friends.NewService(be.groups, be.recipes, log),
		Log:       log,
	}, api.Options{
		AllowOrigins:   cfg.Server.AllowOrigins,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		SeedFile:       cfg.Recipes.SeedFile,
	})

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Nobody is at the stove to nudge; the supervisor only abandons
	// sessions left open for too long.
	sup := idle.New(be.sessions, eng, nil, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening on %s", cfg.Server.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		sup.Start(gctx)
		<-gctx.Done()
		sup.Stop()

		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
