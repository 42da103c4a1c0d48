// internal/platform/logx/logx.go

// Package logx es el logger estructurado de slugscout.
// Mantiene una interfaz clave/valor pequeña y delega en zerolog.
package logx

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Err(err error, kv ...any)
	With(kv ...any) Logger
	SetLevel(lvl Level)
}

// Format elige el formato de consola.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

// Config describe dónde y cómo se escriben los logs.
type Config struct {
	Level  Level
	Format Format

	// File activa un archivo rotativo además de stderr.
	File       string
	MaxSizeMB  int
	MaxBackups int

	NoColor bool
}

type zeroLogger struct {
	zl    zerolog.Logger
	level *atomic.Int32
}

// New construye un logger de consola en stderr. El nivel viene de SLUGSCOUT_LOG_LEVEL.
func New() Logger {
	return NewWithConfig(Config{
		Level:  ParseLevel(os.Getenv("SLUGSCOUT_LOG_LEVEL")),
		Format: FormatConsole,
	})
}

// NewWithLevel crea un logger de consola con un nivel concreto.
func NewWithLevel(lvl Level) Logger {
	return NewWithConfig(Config{Level: lvl, Format: FormatConsole})
}

// NewSilent solo imprime errores.
func NewSilent() Logger {
	return NewWithLevel(LevelError)
}

// NewWithWriter escribe líneas JSON en w. Los tests lo usan para capturar la salida.
func NewWithWriter(w io.Writer, lvl Level) Logger {
	return newZero(w, lvl)
}

// NewWithConfig construye un logger desde cfg. Si el archivo no se puede crear
// se usa solo stderr.
func NewWithConfig(cfg Config) Logger {
	var console io.Writer = os.Stderr
	if cfg.Format != FormatJSON {
		console = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "15:04:05",
			NoColor:    cfg.NoColor,
		}
	}

	out := console
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err == nil {
			file := &lumberjack.Logger{
				Filename:   cfg.File,
				MaxSize:    defaultInt(cfg.MaxSizeMB, 50),
				MaxBackups: defaultInt(cfg.MaxBackups, 3),
				LocalTime:  true,
			}
			out = zerolog.MultiLevelWriter(console, file)
		}
	}

	return newZero(out, cfg.Level)
}

func newZero(w io.Writer, lvl Level) *zeroLogger {
	level := &atomic.Int32{}
	level.Store(int32(toZerolog(lvl)))
	zl := zerolog.New(w).With().Timestamp().Logger()
	return &zeroLogger{zl: zl, level: level}
}

func (z *zeroLogger) With(kv ...any) Logger {
	ctx := z.zl.With()
	for i := 0; i < len(kv); i += 2 {
		key := fmt.Sprint(kv[i])
		if i+1 < len(kv) {
			ctx = ctx.Interface(key, kv[i+1])
		} else {
			ctx = ctx.Str(key, "(missing)")
		}
	}
	// el puntero de nivel se comparte: SetLevel en el padre llega a los hijos
	return &zeroLogger{zl: ctx.Logger(), level: z.level}
}

func (z *zeroLogger) SetLevel(lvl Level) {
	z.level.Store(int32(toZerolog(lvl)))
}

func (z *zeroLogger) Debug(msg string, kv ...any) { z.log(zerolog.DebugLevel, msg, kv...) }
func (z *zeroLogger) Info(msg string, kv ...any)  { z.log(zerolog.InfoLevel, msg, kv...) }
func (z *zeroLogger) Warn(msg string, kv ...any)  { z.log(zerolog.WarnLevel, msg, kv...) }

func (z *zeroLogger) Err(err error, kv ...any) {
	if err == nil {
		return
	}
	if z.enabled(zerolog.ErrorLevel) {
		ev := z.zl.WithLevel(zerolog.ErrorLevel).Err(err)
		fields(ev, kv...).Send()
	}
}

func (z *zeroLogger) log(lvl zerolog.Level, msg string, kv ...any) {
	if !z.enabled(lvl) {
		return
	}
	fields(z.zl.WithLevel(lvl), kv...).Msg(msg)
}

func (z *zeroLogger) enabled(lvl zerolog.Level) bool {
	return lvl >= zerolog.Level(z.level.Load())
}

func fields(ev *zerolog.Event, kv ...any) *zerolog.Event {
	for i := 0; i < len(kv); i += 2 {
		key := fmt.Sprint(kv[i])
		if i+1 >= len(kv) {
			ev = ev.Str(key, "(missing)")
			continue
		}
		switch v := kv[i+1].(type) {
		case string:
			ev = ev.Str(key, v)
		case int:
			ev = ev.Int(key, v)
		case int64:
			ev = ev.Int64(key, v)
		case bool:
			ev = ev.Bool(key, v)
		case time.Duration:
			ev = ev.Dur(key, v)
		case error:
			ev = ev.AnErr(key, v)
		case fmt.Stringer:
			ev = ev.Stringer(key, v)
		default:
			ev = ev.Interface(key, v)
		}
	}
	return ev
}

func toZerolog(lvl Level) zerolog.Level {
	switch lvl {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// ParseLevel traduce un nombre a Level; los desconocidos caen en info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "dbg":
		return LevelDebug
	case "info", "inf", "":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "err", "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func defaultInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
