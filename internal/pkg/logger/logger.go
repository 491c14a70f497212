package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger define a interface para logging estruturado.
// A aplicação (CLI, Service, Repository) deve depender apenas desta interface.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error)
	Fatal(msg string, err error)
}

// ZapLogger é a implementação concreta da interface Logger sobre o zap.
// A saída vai para o stderr: o stdout fica reservado para o resultado dos comandos.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// NewLogger cria e retorna uma nova instância do Logger com saída JSON.
// Esta função é chamada no main.go.
func NewLogger(level string) Logger {
	return newZapLogger(level, false)
}

// NewDevelopmentLogger cria um Logger com saída legível (console) para ENV=development.
func NewDevelopmentLogger(level string) Logger {
	return newZapLogger(level, true)
}

// NewNopLogger descarta todas as mensagens. Útil em testes.
func NewNopLogger() Logger {
	return &ZapLogger{sugar: zap.NewNop().Sugar()}
}

func newZapLogger(level string, development bool) Logger {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zapcore.InfoLevel // Default to info
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.MessageKey = "message"
	encoderCfg.EncodeTime = zapcore.RFC3339TimeEncoder

	var encoder zapcore.Encoder
	if development {
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), zap.NewAtomicLevelAt(lvl))
	return &ZapLogger{sugar: zap.New(core, zap.AddCallerSkip(1)).Sugar()}
}

// keysAndValues achata o mapa de campos no formato aceito pelo SugaredLogger.
func keysAndValues(fields map[string]interface{}) []interface{} {
	if len(fields) == 0 {
		return nil
	}
	kv := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		kv = append(kv, k, v)
	}
	return kv
}

// Implementações da Interface Logger

func (l *ZapLogger) Debug(msg string, fields map[string]interface{}) {
	l.sugar.Debugw(msg, keysAndValues(fields)...)
}

func (l *ZapLogger) Info(msg string, fields map[string]interface{}) {
	l.sugar.Infow(msg, keysAndValues(fields)...)
}

func (l *ZapLogger) Warn(msg string, fields map[string]interface{}) {
	l.sugar.Warnw(msg, keysAndValues(fields)...)
}

func (l *ZapLogger) Error(msg string, err error) {
	l.sugar.Errorw(msg, zap.Error(err))
}

// Fatal registra a mensagem e encerra o programa (os.Exit(1)).
func (l *ZapLogger) Fatal(msg string, err error) {
	l.sugar.Fatalw(msg, zap.Error(err))
}

// Sync descarrega buffers pendentes; chamado no encerramento da CLI.
func (l *ZapLogger) Sync() error {
	return l.sugar.Sync()
}
