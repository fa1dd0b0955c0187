package main

import (
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/psrec/psrec/internal/database"
	"github.com/psrec/psrec/internal/demo"
	"github.com/psrec/psrec/internal/recommended"
	"github.com/psrec/psrec/internal/recommender"
	"github.com/psrec/psrec/internal/server"
	"github.com/psrec/psrec/internal/solvedac"
	"github.com/psrec/psrec/internal/tag"
	"github.com/psrec/psrec/internal/user"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openStores(ctx, cfg, log, database.DefaultServerOptions())
		if err != nil {
			return err
		}
		defer st.Close()

		solved := solvedac.New(cfg.SolvedACBaseURL,
			solvedac.WithHTTPClient(&http.Client{Timeout: cfg.SolvedACTimeout}))
		engine := recommender.New(recommender.WithSimilarUsers(cfg.SimilarUsers))
		recs := recommended.NewService(engine, st.problems, solved, log, recommended.Options{
			Limit:       cfg.RecommendLimit,
			SolvedPages: cfg.SolvedACMaxPages,
		})
		if _, _, err := recs.Retrain(ctx); err != nil {
			if !errors.Is(err, recommender.ErrNoData) {
				return fmt.Errorf("training recommender: %w", err)
			}
			log.Warn("no solve data yet, run `psrec crawl users` and POST /admin/retrain")
		}

		app := server.New(server.Deps{
			Config:          cfg,
			Log:             log,
			Users:           user.NewService(st.users),
			Tags:            tag.NewService(st.tags),
			Recommendations: recs,
			Demo:            demo.NewRunner(cfg.DemoScript, cfg.DemoTimeout),
		})

		errCh := make(chan error, 1)
		go func() {
			log.Info("listening", zap.String("addr", cfg.Addr), zap.String("env", cfg.Env))
			errCh <- app.Listen(cfg.Addr)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		log.Info("shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
