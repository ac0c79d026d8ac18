package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	Port            string        `envconfig:"PORT" default:"8080"`
	FolderPath      string        `envconfig:"FOLDER_PATH" default:"test_photos"`
	IntervalSecs    float64       `envconfig:"INTERVAL_SECS" default:"0"`
	ChunkSize       int           `envconfig:"CHUNK_SIZE" default:"102400"`
	Debug           bool          `envconfig:"DEBUG" default:"false"`
	IndexPath       string        `envconfig:"INDEX_PATH" default:"index.html"`
	ZipBinary       string        `envconfig:"ZIP_BINARY" default:"zip"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
}

// Interval возвращает паузу между отправкой фрагментов архива.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalSecs * float64(time.Second))
}

// Load собирает конфигурацию: значения по умолчанию, затем .env и переменные
// окружения, затем флаги командной строки.
func Load(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %v", ErrDotenvLoad, err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEnvParse, err)
	}

	if err := cfg.parseFlags(args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) parseFlags(args []string) error {
	fset := flag.NewFlagSet("zipstream", flag.ContinueOnError)

	fset.BoolVar(&c.Debug, "d", c.Debug, "включить отладочное логирование")
	fset.BoolVar(&c.Debug, "debug", c.Debug, "включить отладочное логирование")
	fset.Float64Var(&c.IntervalSecs, "i", c.IntervalSecs, "задержка между фрагментами архива, сек")
	fset.Float64Var(&c.IntervalSecs, "interval", c.IntervalSecs, "задержка между фрагментами архива, сек")
	fset.StringVar(&c.FolderPath, "f", c.FolderPath, "путь к каталогу с фотографиями")
	fset.StringVar(&c.FolderPath, "folder", c.FolderPath, "путь к каталогу с фотографиями")
	fset.StringVar(&c.Host, "H", c.Host, "адрес сервера")
	fset.StringVar(&c.Host, "host", c.Host, "адрес сервера")
	fset.StringVar(&c.Port, "P", c.Port, "порт сервера")
	fset.StringVar(&c.Port, "port", c.Port, "порт сервера")
	fset.IntVar(&c.ChunkSize, "s", c.ChunkSize, "размер фрагмента архива в байтах")
	fset.IntVar(&c.ChunkSize, "size", c.ChunkSize, "размер фрагмента архива в байтах")
	fset.StringVar(&c.IndexPath, "index", c.IndexPath, "путь к странице index.html")
	fset.StringVar(&c.ZipBinary, "zip", c.ZipBinary, "исполняемый файл zip")

	if err := fset.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrFlagParse, err)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.FolderPath == "" {
		return fmt.Errorf("%w: не указан каталог с фотографиями", ErrInvalidConfig)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: размер фрагмента должен быть положительным: %d", ErrInvalidConfig, c.ChunkSize)
	}
	if c.IntervalSecs < 0 {
		return fmt.Errorf("%w: интервал не может быть отрицательным: %v", ErrInvalidConfig, c.IntervalSecs)
	}
	if c.ZipBinary == "" {
		return fmt.Errorf("%w: не указан исполняемый файл zip", ErrInvalidConfig)
	}
	return nil
}
