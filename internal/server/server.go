// Package server wires the service, execution backend, sweeper and HTTP
// layer together and owns their lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clipforge/config"
	"clipforge/internal/appdirs"
	"clipforge/internal/cleanup"
	"clipforge/internal/deps"
	"clipforge/internal/handler"
	"clipforge/internal/queue"
	"clipforge/internal/router"
	"clipforge/internal/service"
	"clipforge/internal/taskrunner"
	"clipforge/log"
)

type runnerDispatcher struct {
	runner *taskrunner.Runner
}

func (d runnerDispatcher) Dispatch(jobId string) error {
	return d.runner.SubmitRenderTask(taskrunner.RenderTaskPayload{JobID: jobId})
}

type queueDispatcher struct {
	queue *queue.Queue
}

func (d queueDispatcher) Dispatch(jobId string) error {
	return d.queue.EnqueueRenderTask(queue.RenderTaskPayload{JobID: jobId})
}

// StartBackend runs the HTTP server until SIGINT/SIGTERM. On shutdown
// the execution backend drains and a final sweep clears all working
// directories.
func StartBackend() error {
	states, err := deps.CheckDependencies(config.Conf.Policy.FfmpegPath, config.Conf.Policy.FfprobePath)
	log.GetLogger().Info(deps.FormatDependencyReport(states))
	if err != nil {
		return err
	}

	paths, err := appdirs.Resolve()
	if err != nil {
		return err
	}

	uploadRoot := appdirs.UploadRootFor(paths)
	tempRoot := appdirs.TempRootFor(paths)
	clipRoot := appdirs.ClipRootFor(paths)
	if err := cleanup.EnsureDirs(uploadRoot, tempRoot, clipRoot); err != nil {
		return fmt.Errorf("prepare working directories: %w", err)
	}

	svc := service.NewService()
	if svc == nil {
		return errors.New("service initialization failed")
	}

	var dispatcher handler.Dispatcher
	var shutdownBackend func()

	switch config.Conf.App.Queue {
	case "redis":
		q := queue.NewQueue(queue.QueueConfig{
			RedisAddr:     config.Conf.App.RedisAddr,
			RedisPassword: config.Conf.App.RedisPass,
			Concurrency:   config.Conf.App.Workers,
		})
		go func() {
			if err := queue.StartWorker(q, svc); err != nil {
				log.GetLogger().Error("queue worker stopped", zap.Error(err))
			}
		}()
		dispatcher = queueDispatcher{queue: q}
		shutdownBackend = func() { _ = q.Close() }
		log.GetLogger().Info("using redis render queue",
			zap.String("addr", config.Conf.App.RedisAddr))
	default:
		runner := taskrunner.New(svc, taskrunner.Config{
			QueueSize:   config.Conf.App.QueueBacklog,
			Concurrency: config.Conf.App.Workers,
		})
		dispatcher = runnerDispatcher{runner: runner}
		shutdownBackend = runner.Close
		log.GetLogger().Info("using in-process render runner",
			zap.Int("workers", config.Conf.App.Workers))
	}

	sweeper := cleanup.NewSweeper([]cleanup.Target{
		{Dir: uploadRoot, MaxAge: config.Conf.Cleanup.UploadMaxAge()},
		{Dir: tempRoot, MaxAge: config.Conf.Cleanup.TempMaxAge()},
		{Dir: clipRoot, MaxAge: config.Conf.Cleanup.ClipMaxAge(), Pattern: "*.gif"},
	}, config.Conf.Cleanup.SweepInterval())

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	go sweeper.Run(sweepCtx)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	hdl := handler.NewHandler(svc, dispatcher)
	router.SetupRouter(engine, hdl)

	addr := fmt.Sprintf("%s:%d", config.Conf.Server.Host, config.Conf.Server.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() {
		log.GetLogger().Info("http server listening", zap.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		shutdownBackend()
		stopSweeper()
		sweeper.FinalSweep()
		return err
	case sig := <-quit:
		log.GetLogger().Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.GetLogger().Warn("http shutdown incomplete", zap.Error(err))
	}

	shutdownBackend()
	stopSweeper()
	sweeper.FinalSweep()

	log.GetLogger().Info("shutdown complete")
	return nil
}
