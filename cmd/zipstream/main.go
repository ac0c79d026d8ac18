package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sunr3d/zipstream/internal/config"
	"github.com/sunr3d/zipstream/internal/entrypoint"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log, err := newLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, "не удалось создать логгер:", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := entrypoint.Run(cfg, log); err != nil {
		log.Fatal("сервис остановлен с ошибкой", zap.Error(err))
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if debug {
		zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return zcfg.Build()
}
