package infra

import "context"

type JobRegistry interface {
	Track(id, archive string) error
	Release(id string) error
	Active() int
	Wait(ctx context.Context) error
}
