package logger

import (
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const maxBufferSize = 1000

var (
	instance *Logger
	once     sync.Once
)

type LogEntry struct {
	Timestamp time.Time
	Message   string
}

// Logger mirrors every message into a bounded in-memory buffer so the
// logs view can show recent activity even when no log file is open.
type Logger struct {
	file    *os.File
	zap     *zap.Logger
	mu      sync.Mutex
	buffer  []LogEntry
	enabled bool
}

func Init(logPath string) error {
	var initErr error
	once.Do(func() {
		file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			initErr = fmt.Errorf("failed to open log file: %w", err)
			return
		}

		encoderCfg := zap.NewProductionEncoderConfig()
		encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		core := zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderCfg),
			zapcore.AddSync(file),
			zap.DebugLevel,
		)

		instance = &Logger{
			file:    file,
			zap:     zap.New(core),
			buffer:  make([]LogEntry, 0, maxBufferSize),
			enabled: true,
		}
	})

	if instance == nil && initErr == nil {
		EnsureInit()
	}

	return initErr
}

func EnsureInit() {
	if instance == nil {
		instance = &Logger{
			zap:     zap.NewNop(),
			buffer:  make([]LogEntry, 0, maxBufferSize),
			enabled: false,
		}
	}
}

func Close() error {
	if instance != nil && instance.file != nil {
		_ = instance.zap.Sync()
		return instance.file.Close()
	}
	return nil
}

// Zap returns the structured logger backing the package. It is a no-op
// logger until Init succeeds.
func Zap() *zap.Logger {
	EnsureInit()
	return instance.zap
}

func addToBuffer(message string) {
	EnsureInit()
	instance.mu.Lock()
	defer instance.mu.Unlock()

	entry := LogEntry{
		Timestamp: time.Now(),
		Message:   message,
	}

	if len(instance.buffer) >= maxBufferSize {
		instance.buffer = instance.buffer[1:]
	}
	instance.buffer = append(instance.buffer, entry)
}

func GetLogs() []LogEntry {
	EnsureInit()
	instance.mu.Lock()
	defer instance.mu.Unlock()

	logs := make([]LogEntry, len(instance.buffer))
	copy(logs, instance.buffer)
	return logs
}

func write(level zapcore.Level, message string, fields ...zap.Field) {
	if instance == nil || !instance.enabled {
		return
	}
	if ce := instance.zap.Check(level, message); ce != nil {
		ce.Write(fields...)
	}
}

func LogFileOpen(path string) {
	addToBuffer(fmt.Sprintf("[FILE_OPEN] %s", path))
	write(zap.DebugLevel, "file open", zap.String("path", path))
}

func LogFileWrite(path string) {
	addToBuffer(fmt.Sprintf("[FILE_WRITE] %s", path))
	write(zap.DebugLevel, "file write", zap.String("path", path))
}

func LogError(operation, target string, err error) {
	addToBuffer(fmt.Sprintf("[ERROR] %s: %s - %v", operation, target, err))
	write(zap.ErrorLevel, operation, zap.String("target", target), zap.Error(err))
}

func Log(message string, args ...interface{}) {
	formatted := fmt.Sprintf(message, args...)
	addToBuffer("[INFO] " + formatted)
	write(zap.InfoLevel, formatted)
}

// reset drops the singleton. Tests only.
func reset() {
	instance = nil
	once = sync.Once{}
}
