package utils

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ============================================================
// Конфигурация логгера
// ============================================================

// LogConfig - конфигурация логгера
type LogConfig struct {
	Level       string // debug, info, warn, error, fatal
	Format      string // json или text
	Output      string // путь к файлу; пусто - stdout
	Development bool   // режим разработки (caller, цветные уровни)
}

// Logger - обертка над zap.Logger со структурированным и printf-style API
type Logger struct {
	*zap.Logger
	sugar *zap.SugaredLogger
}

// ============================================================
// Инициализация
// ============================================================

// InitLogger создает новый логгер по конфигурации.
// Никогда не возвращает nil: при невалидном output происходит
// fallback на stderr.
func InitLogger(config LogConfig) *Logger {
	level := parseLevel(config.Level)

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	switch strings.ToLower(config.Format) {
	case "text", "console":
		if config.Development {
			encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	default:
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	var sink zapcore.WriteSyncer
	if config.Output != "" {
		file, err := os.OpenFile(config.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			// Невалидный путь - пишем в stderr, не падаем
			sink = zapcore.AddSync(os.Stderr)
		} else {
			sink = zapcore.AddSync(file)
		}
	} else {
		sink = zapcore.AddSync(os.Stdout)
	}

	core := zapcore.NewCore(encoder, sink, level)

	options := []zap.Option{}
	if config.Development {
		options = append(options, zap.Development(), zap.AddCaller())
	}

	zapLogger := zap.New(core, options...)

	return &Logger{
		Logger: zapLogger,
		sugar:  zapLogger.Sugar(),
	}
}

// parseLevel преобразует строковый уровень в zapcore.Level.
// Неизвестное значение - info.
func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// ============================================================
// Глобальный логгер
// ============================================================

var (
	globalMu     sync.RWMutex
	globalLogger *Logger
)

// InitGlobalLogger инициализирует глобальный логгер по конфигурации
func InitGlobalLogger(config LogConfig) *Logger {
	logger := InitLogger(config)
	SetGlobalLogger(logger)
	return logger
}

// SetGlobalLogger устанавливает глобальный логгер
func SetGlobalLogger(logger *Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = logger
}

// GetGlobalLogger возвращает глобальный логгер.
// Если логгер не инициализирован - создается логгер по умолчанию.
func GetGlobalLogger() *Logger {
	globalMu.RLock()
	if globalLogger != nil {
		defer globalMu.RUnlock()
		return globalLogger
	}
	globalMu.RUnlock()

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger == nil {
		globalLogger = InitLogger(LogConfig{})
	}
	return globalLogger
}

// L - короткий алиас для GetGlobalLogger
func L() *Logger {
	return GetGlobalLogger()
}

// ============================================================
// Методы Logger
// ============================================================

// With возвращает дочерний логгер с постоянными полями
func (l *Logger) With(fields ...zap.Field) *Logger {
	child := l.Logger.With(fields...)
	return &Logger{
		Logger: child,
		sugar:  child.Sugar(),
	}
}

// WithComponent возвращает логгер с полем component
func (l *Logger) WithComponent(component string) *Logger {
	return l.With(Component(component))
}

// WithProvider возвращает логгер с полем provider (upstream API)
func (l *Logger) WithProvider(provider string) *Logger {
	return l.With(Provider(provider))
}

// WithCoin возвращает логгер с полем coin_id
func (l *Logger) WithCoin(coinID string) *Logger {
	return l.With(CoinID(coinID))
}

// WithUserID возвращает логгер с полем user_id
func (l *Logger) WithUserID(userID int) *Logger {
	return l.With(UserID(userID))
}

// Sugar возвращает printf-style логгер
func (l *Logger) Sugar() *zap.SugaredLogger {
	return l.sugar
}

// ============================================================
// Глобальные функции логирования
// ============================================================

// Debug логирует сообщение уровня debug через глобальный логгер
func Debug(msg string, fields ...zap.Field) {
	GetGlobalLogger().Debug(msg, fields...)
}

// Info логирует сообщение уровня info через глобальный логгер
func Info(msg string, fields ...zap.Field) {
	GetGlobalLogger().Info(msg, fields...)
}

// Warn логирует сообщение уровня warn через глобальный логгер
func Warn(msg string, fields ...zap.Field) {
	GetGlobalLogger().Warn(msg, fields...)
}

// Error логирует сообщение уровня error через глобальный логгер
func Error(msg string, fields ...zap.Field) {
	GetGlobalLogger().Error(msg, fields...)
}

// Fatal логирует сообщение и завершает процесс
func Fatal(msg string, fields ...zap.Field) {
	GetGlobalLogger().Fatal(msg, fields...)
}

// Debugf - printf-style debug
func Debugf(template string, args ...interface{}) {
	GetGlobalLogger().sugar.Debugf(template, args...)
}

// Infof - printf-style info
func Infof(template string, args ...interface{}) {
	GetGlobalLogger().sugar.Infof(template, args...)
}

// Warnf - printf-style warn
func Warnf(template string, args ...interface{}) {
	GetGlobalLogger().sugar.Warnf(template, args...)
}

// Errorf - printf-style error
func Errorf(template string, args ...interface{}) {
	GetGlobalLogger().sugar.Errorf(template, args...)
}

// Fatalf - printf-style fatal
func Fatalf(template string, args ...interface{}) {
	GetGlobalLogger().sugar.Fatalf(template, args...)
}

// ============================================================
// Конструкторы полей
// ============================================================

// Доменные поля watchlist-а

// Component - имя компонента (service, hub, gateway)
func Component(component string) zap.Field {
	return zap.String("component", component)
}

// Provider - имя upstream-провайдера (coinpaprika, newsapi)
func Provider(provider string) zap.Field {
	return zap.String("provider", provider)
}

// CoinID - идентификатор монеты провайдера (btc-bitcoin)
func CoinID(coinID string) zap.Field {
	return zap.String("coin_id", coinID)
}

// Symbol - тикер монеты (BTC)
func Symbol(symbol string) zap.Field {
	return zap.String("symbol", symbol)
}

// Price - текущая цена в USD
func Price(price float64) zap.Field {
	return zap.Float64("price", price)
}

// Change24h - изменение цены за 24 часа в процентах
func Change24h(change float64) zap.Field {
	return zap.Float64("change_24h", change)
}

// UserID - идентификатор пользователя
func UserID(userID int) zap.Field {
	return zap.Int("user_id", userID)
}

// RequestID - идентификатор HTTP запроса
func RequestID(requestID string) zap.Field {
	return zap.String("request_id", requestID)
}

// ClientID - идентификатор websocket клиента
func ClientID(clientID string) zap.Field {
	return zap.String("client_id", clientID)
}

// Operation - имя операции (create, refresh, list)
func Operation(operation string) zap.Field {
	return zap.String("operation", operation)
}

// Latency - длительность операции в миллисекундах
func Latency(ms float64) zap.Field {
	return zap.Float64("latency_ms", ms)
}

// Переэкспорт стандартных конструкторов zap для удобства

func String(key, value string) zap.Field          { return zap.String(key, value) }
func Int(key string, value int) zap.Field         { return zap.Int(key, value) }
func Int64(key string, value int64) zap.Field     { return zap.Int64(key, value) }
func Float64(key string, v float64) zap.Field     { return zap.Float64(key, v) }
func Bool(key string, value bool) zap.Field       { return zap.Bool(key, value) }
func Err(err error) zap.Field                     { return zap.Error(err) }
func Any(key string, value interface{}) zap.Field { return zap.Any(key, value) }

// fieldsToInterface преобразует zap-поля в плоский список key/value
// для передачи в sugared логгер
func fieldsToInterface(fields []zap.Field) []interface{} {
	result := make([]interface{}, 0, len(fields)*2)
	for _, f := range fields {
		var value interface{}
		switch {
		case f.Interface != nil:
			value = f.Interface
		case f.String != "":
			value = f.String
		default:
			value = f.Integer
		}
		result = append(result, f.Key, value)
	}
	return result
}
