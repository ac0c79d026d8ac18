package config

import "errors"

var (
	ErrDotenvLoad    = errors.New("не удалось загрузить файл .env")
	ErrEnvParse      = errors.New("не удалось разобрать переменные окружения")
	ErrFlagParse     = errors.New("не удалось разобрать флаги командной строки")
	ErrInvalidConfig = errors.New("некорректная конфигурация")
)
