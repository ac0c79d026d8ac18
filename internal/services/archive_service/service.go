package archive_service

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sunr3d/zipstream/internal/config"
	"github.com/sunr3d/zipstream/internal/interfaces/infra"
	"github.com/sunr3d/zipstream/internal/interfaces/services"
	"github.com/sunr3d/zipstream/models"
)

var _ services.ArchiveService = (*archiveService)(nil)

type archiveService struct {
	jobs   infra.JobRegistry
	logger *zap.Logger
	cfg    *config.Config

	// newCmd собирает команду сжатия; подменяется в тестах.
	newCmd func(name string) *exec.Cmd
}

func New(log *zap.Logger, cfg *config.Config, jobs infra.JobRegistry) services.ArchiveService {
	s := &archiveService{
		logger: log,
		cfg:    cfg,
		jobs:   jobs,
	}
	s.newCmd = s.zipCommand
	return s
}

func (s *archiveService) StartCompression(ctx context.Context, req models.ArchiveRequest) (services.CompressionJob, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	if err := s.resolveTarget(req.Name); err != nil {
		s.logger.Debug("каталог для архивации не найден",
			zap.String("archive", req.Name),
			zap.String("request_id", req.RequestID),
			zap.Error(err),
		)
		return nil, err
	}

	cmd := s.newCmd(req.Name)
	stderr := newTailBuffer(stderrTailSize)
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpawnFailed, err)
	}

	if err := cmd.Start(); err != nil {
		s.logger.Error("не удалось запустить процесс zip",
			zap.String("archive", req.Name),
			zap.String("request_id", req.RequestID),
			zap.String("binary", cmd.Path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrSpawnFailed, err)
	}

	id := uuid.NewString()
	job := &compressionJob{
		id:      id,
		archive: req.Name,
		cmd:     cmd,
		stdout:  stdout,
		stderr:  stderr,
		state:   models.JobStateRunning,
		logger:  s.logger.With(zap.String("archive", req.Name), zap.String("request_id", req.RequestID), zap.String("job_id", id)),
	}

	if err := s.jobs.Track(job.id, req.Name); err != nil {
		job.logger.Warn("не удалось зарегистрировать задачу сжатия", zap.Error(err))
	} else {
		job.onReap = func() {
			if err := s.jobs.Release(job.id); err != nil {
				job.logger.Warn("не удалось снять задачу сжатия с учета", zap.Error(err))
			}
		}
	}

	// Отмена контекста запроса убивает процесс, поэтому блокирующее
	// чтение из канала завершается сразу.
	job.stop = context.AfterFunc(ctx, job.Terminate)

	job.logger.Info("процесс zip запущен", zap.Int("pid", cmd.Process.Pid))
	return job, nil
}

func (s *archiveService) zipCommand(name string) *exec.Cmd {
	cmd := exec.Command(s.cfg.ZipBinary, "-r", "-", name)
	cmd.Dir = s.cfg.FolderPath
	return cmd
}

// resolveTarget допускает только существующий каталог непосредственно
// внутри корневой папки.
func (s *archiveService) resolveTarget(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.HasPrefix(name, "-") ||
		strings.ContainsAny(name, `/\`+"\x00") ||
		filepath.Base(name) != name {
		return fmt.Errorf("%w: некорректное имя %q", ErrDirectoryNotFound, name)
	}

	root, err := filepath.EvalSymlinks(s.cfg.FolderPath)
	if err != nil {
		return fmt.Errorf("%w: корневая папка недоступна: %v", ErrDirectoryNotFound, err)
	}
	target, err := filepath.EvalSymlinks(filepath.Join(root, name))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDirectoryNotFound, err)
	}

	// Симлинк внутри корня не должен уводить за его пределы.
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: %q указывает за пределы корневой папки", ErrDirectoryNotFound, name)
	}

	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDirectoryNotFound, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %q не является каталогом", ErrDirectoryNotFound, name)
	}

	return nil
}
