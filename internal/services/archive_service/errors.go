package archive_service

import "errors"

var (
	ErrContextDone = errors.New("отмена контекста")

	ErrDirectoryNotFound = errors.New("архив не существует или был удален")
	ErrSpawnFailed       = errors.New("не удалось запустить процесс zip")

	ErrStreamInterrupted      = errors.New("скачивание архива прервано")
	ErrSubprocessAbnormalExit = errors.New("процесс zip завершился с ошибкой")
	ErrReadFailed             = errors.New("не удалось прочитать вывод процесса zip")
)
