package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/sunr3d/zipstream/internal/config"
	"github.com/sunr3d/zipstream/internal/interfaces/services"
	"github.com/sunr3d/zipstream/internal/middleware"
	"github.com/sunr3d/zipstream/internal/services/archive_service"
	"github.com/sunr3d/zipstream/models"
)

const (
	archiveFilename = "archive.zip"
	notFoundMessage = "Архив не существует или был удален"
)

type ArchiveAPI struct {
	service services.ArchiveService
	logger  *zap.Logger
	cfg     *config.Config
}

func New(service services.ArchiveService, logger *zap.Logger, cfg *config.Config) *ArchiveAPI {
	return &ArchiveAPI{
		service: service,
		logger:  logger,
		cfg:     cfg,
	}
}

// GET /
func (h *ArchiveAPI) Index(w http.ResponseWriter, r *http.Request) {
	page, err := os.ReadFile(h.cfg.IndexPath)
	if err != nil {
		h.logger.Error("не удалось прочитать index.html", zap.String("path", h.cfg.IndexPath), zap.Error(err))
		http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

// GET /archive/{name}/
func (h *ArchiveAPI) DownloadArchive(w http.ResponseWriter, r *http.Request) {
	req := models.ArchiveRequest{
		Name:      r.PathValue("name"),
		RequestID: middleware.RequestID(r.Context()),
	}
	log := h.logger.With(zap.String("archive", req.Name), zap.String("request_id", req.RequestID))

	ctx := r.Context()
	job, err := h.service.StartCompression(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, archive_service.ErrDirectoryNotFound):
			log.Debug("запрошен несуществующий архив", zap.Error(err))
			http.Error(w, notFoundMessage, http.StatusNotFound)
		case errors.Is(err, archive_service.ErrContextDone):
			log.Debug("запрос отменен до начала архивации", zap.Error(err))
			panic(http.ErrAbortHandler)
		default:
			log.Error("ошибка запуска архивации", zap.Error(err))
			http.Error(w, "Внутренняя ошибка сервера: не удалось создать архив", http.StatusInternalServerError)
		}
		return
	}

	err = h.streamArchive(ctx, w, job, log.With(zap.String("job_id", job.ID())))
	if err == nil {
		return
	}

	if errors.Is(err, archive_service.ErrStreamInterrupted) {
		log.Debug("скачивание прервано", zap.Error(err))
	} else {
		log.Error("ошибка при передаче архива", zap.Error(err))
	}
	// Заголовки уже отправлены: рвем соединение, чтобы клиент не принял
	// обрезанный архив за целый.
	panic(http.ErrAbortHandler)
}

// streamArchive передает вывод job клиенту фрагментами по cfg.ChunkSize
// байт с паузой cfg.Interval() между ними. Процесс останавливается и
// собирается на любом пути выхода.
func (h *ArchiveAPI) streamArchive(ctx context.Context, w http.ResponseWriter, job services.CompressionJob, log *zap.Logger) (err error) {
	defer func() {
		job.Terminate()
		if reapErr := job.Reap(); reapErr != nil && err == nil {
			err = reapErr
		}
	}()

	rc := http.NewResponseController(w)

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", archiveFilename))
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		return fmt.Errorf("%w: %v", archive_service.ErrStreamInterrupted, err)
	}

	interval := h.cfg.Interval()
	var timer *time.Timer
	if interval > 0 {
		timer = time.NewTimer(interval)
		defer timer.Stop()
	}

	sent := 0
	for {
		chunk, eof, err := job.ReadChunk(h.cfg.ChunkSize)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("%w: %v", archive_service.ErrStreamInterrupted, ctx.Err())
			}
			return err
		}

		if len(chunk) > 0 {
			log.Debug("отправка фрагмента архива", zap.Int("bytes", len(chunk)))
			if _, err := w.Write(chunk); err != nil {
				return fmt.Errorf("%w: %v", archive_service.ErrStreamInterrupted, err)
			}
			if err := rc.Flush(); err != nil {
				return fmt.Errorf("%w: %v", archive_service.ErrStreamInterrupted, err)
			}
			sent += len(chunk)
		}

		if eof {
			log.Info("архив передан", zap.Int("bytes", sent))
			return nil
		}

		if err := pause(ctx, timer, interval); err != nil {
			return fmt.Errorf("%w: %v", archive_service.ErrStreamInterrupted, err)
		}
	}
}

// pause ждет interval или отмены ctx.
func pause(ctx context.Context, timer *time.Timer, interval time.Duration) error {
	if timer == nil {
		return ctx.Err()
	}

	timer.Reset(interval)
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
