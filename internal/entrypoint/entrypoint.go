package entrypoint

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/sunr3d/zipstream/internal/api"
	"github.com/sunr3d/zipstream/internal/config"
	"github.com/sunr3d/zipstream/internal/infra/inmem"
	"github.com/sunr3d/zipstream/internal/interfaces/infra"
	"github.com/sunr3d/zipstream/internal/middleware"
	"github.com/sunr3d/zipstream/internal/server"
	"github.com/sunr3d/zipstream/internal/services/archive_service"
)

func Run(cfg *config.Config, log *zap.Logger) error {
	info, err := os.Stat(cfg.FolderPath)
	if err != nil {
		return fmt.Errorf("каталог с фотографиями недоступен: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("путь %q не является каталогом", cfg.FolderPath)
	}
	log.Info("каталог с фотографиями найден",
		zap.String("path", cfg.FolderPath),
		zap.Int("chunk_size", cfg.ChunkSize),
		zap.Duration("interval", cfg.Interval()),
	)

	jobs := inmem.New(log)
	srv := server.New(cfg.Host, cfg.Port, NewRouter(cfg, log, jobs), cfg.ShutdownTimeout, log)
	runErr := srv.Start()

	// Ни один процесс zip не должен пережить сервер.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := jobs.Wait(ctx); err != nil {
		log.Error("не все процессы zip завершены", zap.Int("active_jobs", jobs.Active()), zap.Error(err))
	}

	return runErr
}

func NewRouter(cfg *config.Config, log *zap.Logger, jobs infra.JobRegistry) http.Handler {
	svc := archive_service.New(log, cfg, jobs)
	controller := api.New(svc, log, cfg)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", controller.Index)
	mux.HandleFunc("GET /archive/{name}/{$}", controller.DownloadArchive)

	router := http.Handler(mux)
	router = middleware.ReqLogger(log)(router)
	router = middleware.Recovery(log)(router)
	return router
}
