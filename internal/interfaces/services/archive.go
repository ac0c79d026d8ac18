package services

import (
	"context"

	"github.com/sunr3d/zipstream/models"
)

type ArchiveService interface {
	StartCompression(ctx context.Context, req models.ArchiveRequest) (CompressionJob, error)
}

// CompressionJob принадлежит одному запросу и читается одним потоком.
// Terminate и Reap обязаны вызываться на любом пути выхода.
type CompressionJob interface {
	ID() string
	ReadChunk(maxBytes int) ([]byte, bool, error)
	Terminate()
	Reap() error
	State() models.JobState
}
