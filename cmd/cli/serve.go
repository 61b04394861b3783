package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/limaJavier/examtabling/internal/api"
	"github.com/limaJavier/examtabling/internal/service"
	"github.com/limaJavier/examtabling/internal/store"
	"github.com/limaJavier/examtabling/pkg/model"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			db, err := store.Open(ctx, app.config.Database.DSN)
			if err != nil {
				return err
			}
			defer db.Close()

			allocator, err := model.NewRoomAllocator(model.RoomPolicy(app.config.Scheduler.RoomPolicy))
			if err != nil {
				return err
			}
			scheduler := model.NewScheduler(allocator, app.config.Scheduler.SearchOptions(), app.logger)
			scheduleService := service.NewScheduleService(db, scheduler, model.ParseAlgorithm(app.config.Scheduler.Algorithm), app.logger)

			gin.SetMode(gin.ReleaseMode)
			server := &http.Server{
				Addr:              fmt.Sprintf(":%v", app.config.Server.Port),
				Handler:           api.NewRouter(api.NewHandler(scheduleService), app.logger),
				ReadHeaderTimeout: 5 * time.Second,
			}

			group, ctx := errgroup.WithContext(ctx)
			group.Go(func() error {
				app.logger.Info("api listening", zap.String("addr", server.Addr))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			group.Go(func() error {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				app.logger.Info("api shutting down")
				return server.Shutdown(shutdownCtx)
			})
			return group.Wait()
		},
	}

	cmd.Flags().Int("port", 8080, "HTTP port")
	_ = app.viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	return cmd
}
