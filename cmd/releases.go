package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/crossroad/api/releases"
	"github.com/kilianp07/crossroad/core/model"
	"github.com/kilianp07/crossroad/infra/logger"
	"github.com/kilianp07/crossroad/infra/releaselog"
)

var releasesFlags struct {
	path   string
	runID  string
	route  string
	serve  string
	token  string
	minDel float64
}

var releasesCmd = &cobra.Command{
	Use:   "releases",
	Short: "Query a release log written by the jsonl or sqlite sink",
	RunE:  queryReleases,
}

func init() {
	f := releasesCmd.Flags()
	f.StringVar(&releasesFlags.path, "path", "releases.db", "release log (.db for SQLite, .jsonl otherwise)")
	f.StringVar(&releasesFlags.runID, "run-id", "", "only this run")
	f.StringVar(&releasesFlags.route, "route", "", "only this route, e.g. WE")
	f.Float64Var(&releasesFlags.minDel, "min-delay", 0, "only releases delayed at least this many seconds")
	f.StringVar(&releasesFlags.serve, "serve", "", "serve "+releases.Path+" on this address instead of printing")
	f.StringVar(&releasesFlags.token, "token", "", "bearer token required by the HTTP endpoint")
	rootCmd.AddCommand(releasesCmd)
}

func openReleaseLog(path string) (releaselog.Store, error) {
	switch filepath.Ext(path) {
	case ".db", ".sqlite":
		return releaselog.NewSQLiteStore(path)
	default:
		return releaselog.NewJSONLStore(path, 10, 3, 7)
	}
}

func queryReleases(cmd *cobra.Command, _ []string) error {
	store, err := openReleaseLog(releasesFlags.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", releasesFlags.path, err)
	}
	defer func() { _ = store.Close() }()

	if releasesFlags.serve != "" {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serveReleases(ctx, releasesFlags.serve, releases.NewHandler(store, releasesFlags.token))
	}

	q := releaselog.Query{RunID: releasesFlags.runID, MinDelay: releasesFlags.minDel}
	if releasesFlags.route != "" {
		q.Route = model.Route("route_" + releasesFlags.route)
	}
	recs, err := store.Query(cmd.Context(), q)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, r := range recs {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

func serveReleases(ctx context.Context, addr string, h http.Handler) error {
	log := logger.New("releases-api")
	mux := http.NewServeMux()
	mux.Handle(releases.Path, h)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warnf("shutdown: %v", err)
		}
	}()
	log.Infof("serving %s on %s", releases.Path, addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
