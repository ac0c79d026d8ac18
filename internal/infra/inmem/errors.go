package inmem

import "errors"

var (
	ErrJobNotFound = errors.New("задача сжатия не найдена")
	ErrJobExists   = errors.New("задача сжатия уже зарегистрирована")
	ErrJobIDEmpty  = errors.New("ID задачи не может быть пустым")
	ErrContextDone = errors.New("отмена контекста")
)
