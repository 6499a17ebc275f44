package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger define a interface para logging estruturado.
// A aplicação (Handler, Service, Repository, Hub) deve depender apenas desta interface.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
	Fatal(msg string, err error)
}

// SlogLogger é a implementação concreta da interface Logger,
// com saída JSON estruturada via log/slog.
type SlogLogger struct {
	l    *slog.Logger
	exit func(int)
}

// NewLogger cria e retorna uma nova instância do Logger escrevendo em stdout.
// Esta função é chamada no main.go.
func NewLogger(level string) Logger {
	return New(os.Stdout, level)
}

// New cria um Logger JSON escrevendo em w. Útil em testes.
func New(w io.Writer, level string) *SlogLogger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(level)})
	return &SlogLogger{l: slog.New(h), exit: os.Exit}
}

// parseLevel converte o nível textual (LOG_LEVEL). Desconhecido vira info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "fatal":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (s *SlogLogger) log(level slog.Level, msg string, err error, fields map[string]interface{}) {
	ctx := context.Background()
	if !s.l.Enabled(ctx, level) {
		return
	}

	attrs := make([]slog.Attr, 0, len(fields)+1)
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}

	s.l.LogAttrs(ctx, level, msg, attrs...)
}

// Implementações da Interface Logger

func (s *SlogLogger) Debug(msg string, fields map[string]interface{}) {
	s.log(slog.LevelDebug, msg, nil, fields)
}

func (s *SlogLogger) Info(msg string, fields map[string]interface{}) {
	s.log(slog.LevelInfo, msg, nil, fields)
}

func (s *SlogLogger) Warn(msg string, fields map[string]interface{}) {
	s.log(slog.LevelWarn, msg, nil, fields)
}

func (s *SlogLogger) Error(msg string, err error, fields ...map[string]interface{}) {
	merged := map[string]interface{}{}
	for _, f := range fields {
		for k, v := range f {
			merged[k] = v
		}
	}
	s.log(slog.LevelError, msg, err, merged)
}

// Fatal registra o erro e encerra o processo.
func (s *SlogLogger) Fatal(msg string, err error) {
	s.log(slog.LevelError, msg, err, map[string]interface{}{"fatal": true})
	s.exit(1)
}
