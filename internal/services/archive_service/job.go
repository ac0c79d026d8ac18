package archive_service

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"go.uber.org/zap"

	"github.com/sunr3d/zipstream/internal/interfaces/services"
	"github.com/sunr3d/zipstream/models"
)

const stderrTailSize = 4 << 10

var _ services.CompressionJob = (*compressionJob)(nil)

type compressionJob struct {
	id      string
	archive string
	cmd     *exec.Cmd
	stdout  io.ReadCloser
	stderr  *tailBuffer
	logger  *zap.Logger

	mu     sync.Mutex
	state  models.JobState
	killed bool

	reapOnce sync.Once
	reapErr  error
	onReap   func()
	stop     func() bool
}

func (j *compressionJob) ID() string {
	return j.id
}

func (j *compressionJob) State() models.JobState {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// ReadChunk читает не более maxBytes байт из stdout процесса. Признак eof
// выставляется только после того, как процесс закрыл свой вывод; пустой
// фрагмент без eof допустим.
func (j *compressionJob) ReadChunk(maxBytes int) ([]byte, bool, error) {
	if maxBytes <= 0 {
		return nil, false, fmt.Errorf("%w: некорректный размер фрагмента %d", ErrReadFailed, maxBytes)
	}

	buf := make([]byte, maxBytes)
	n, err := j.stdout.Read(buf)
	switch {
	case err == nil:
		return buf[:n], false, nil
	case errors.Is(err, io.EOF):
		return j.finishOutput(buf[:n])
	default:
		if j.terminated() {
			return buf[:n], false, fmt.Errorf("%w: процесс остановлен", ErrStreamInterrupted)
		}
		return buf[:n], false, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
}

func (j *compressionJob) finishOutput(tail []byte) ([]byte, bool, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	// Вывод убитого процесса обрывается на середине архива.
	if j.killed {
		return tail, false, fmt.Errorf("%w: процесс остановлен", ErrStreamInterrupted)
	}
	if j.state == models.JobStateRunning {
		j.state = models.JobStateDraining
	}
	return tail, true, nil
}

// Terminate посылает процессу SIGKILL и не ждет его завершения.
func (j *compressionJob) Terminate() {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.state == models.JobStateTerminated || j.state == models.JobStateReaped {
		return
	}

	wasDraining := j.state == models.JobStateDraining
	if err := j.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		j.logger.Warn("не удалось остановить процесс zip", zap.Error(err))
	}
	j.state = models.JobStateTerminated
	// Сигнал после закрытия вывода не делает архив неполным.
	j.killed = !wasDraining

	if wasDraining {
		j.logger.Debug("процесс zip остановлен после передачи архива")
	} else {
		j.logger.Debug("процесс zip остановлен")
	}
}

// Reap дожидается завершения процесса ровно один раз; повторные вызовы
// возвращают сохраненный результат.
func (j *compressionJob) Reap() error {
	j.reapOnce.Do(func() {
		if j.stop != nil {
			j.stop()
		}

		err := j.cmd.Wait()

		j.mu.Lock()
		interrupted := j.state == models.JobStateTerminated
		j.state = models.JobStateReaped
		j.mu.Unlock()

		j.reapErr = j.exitError(err, interrupted)
		if j.reapErr != nil {
			j.logger.Error("процесс zip завершился с ошибкой",
				zap.Error(j.reapErr),
				zap.String("stderr", j.stderr.String()),
			)
		} else {
			j.logger.Debug("процесс zip завершен", zap.Int("exit_code", j.cmd.ProcessState.ExitCode()))
		}

		if j.onReap != nil {
			j.onReap()
		}
	})
	return j.reapErr
}

// exitError отделяет наш собственный SIGKILL от реальной ошибки zip.
func (j *compressionJob) exitError(err error, interrupted bool) error {
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if interrupted && !exitErr.Exited() {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrSubprocessAbnormalExit, exitErr)
	}
	return fmt.Errorf("%w: %v", ErrSubprocessAbnormalExit, err)
}

func (j *compressionJob) terminated() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.killed
}

// tailBuffer хранит последние limit байт stderr процесса.
type tailBuffer struct {
	limit int
	buf   []byte
}

func newTailBuffer(limit int) *tailBuffer {
	return &tailBuffer{limit: limit}
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.limit; over > 0 {
		b.buf = b.buf[over:]
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	return string(b.buf)
}
