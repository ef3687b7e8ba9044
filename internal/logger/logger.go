package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// LogLevel representa o nível de log
type LogLevel int

const (
	LogLevelQuery LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

// String retorna a representação em string do nível de log
func (l LogLevel) String() string {
	switch l {
	case LogLevelQuery:
		return "query"
	case LogLevelInfo:
		return "info"
	case LogLevelWarn:
		return "warn"
	case LogLevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Logger writes leveled, timestamped lines. Safe for concurrent use.
type Logger struct {
	mu     sync.Mutex
	levels map[LogLevel]bool
	writer io.Writer
}

var (
	defaultMu     sync.RWMutex
	defaultLogger = NewLogger([]string{"warn", "error"}, os.Stderr)
)

// NewLogger cria um novo logger
func NewLogger(levels []string, writer io.Writer) *Logger {
	l := &Logger{
		levels: ParseLevels(levels),
		writer: writer,
	}
	return l
}

// ParseLevels turns level names into a level set. Unknown names are ignored.
func ParseLevels(levels []string) map[LogLevel]bool {
	set := make(map[LogLevel]bool)
	for _, level := range levels {
		switch strings.ToLower(strings.TrimSpace(level)) {
		case "query":
			set[LogLevelQuery] = true
		case "info":
			set[LogLevelInfo] = true
		case "warn", "warning":
			set[LogLevelWarn] = true
		case "error":
			set[LogLevelError] = true
		}
	}
	return set
}

// SetDefaultLogger define o logger padrão
func SetDefaultLogger(l *Logger) {
	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
}

// GetDefaultLogger retorna o logger padrão
func GetDefaultLogger() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// Enabled reports whether the level is switched on
func (l *Logger) Enabled(level LogLevel) bool {
	if l == nil {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.levels[level]
}

// SetLevels replaces the enabled levels in place
func (l *Logger) SetLevels(levels []string) {
	set := ParseLevels(levels)
	l.mu.Lock()
	l.levels = set
	l.mu.Unlock()
}

func (l *Logger) write(level LogLevel, msg string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.levels[level] {
		return
	}
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(l.writer, "[%s] [%s] %s\n", timestamp, strings.ToUpper(level.String()), msg)
}

// Query loga uma query SQL com os argumentos já interpolados para leitura
func (l *Logger) Query(id, query string, args []interface{}, duration time.Duration) {
	if !l.Enabled(LogLevelQuery) {
		return
	}
	l.write(LogLevelQuery, fmt.Sprintf("(%s) %s (took %v)", id, formatQuery(query, args), duration))
}

// Info loga uma mensagem informativa
func (l *Logger) Info(format string, args ...interface{}) {
	l.write(LogLevelInfo, fmt.Sprintf(format, args...))
}

// Warn loga um aviso
func (l *Logger) Warn(format string, args ...interface{}) {
	l.write(LogLevelWarn, fmt.Sprintf(format, args...))
}

// Error loga um erro
func (l *Logger) Error(format string, args ...interface{}) {
	l.write(LogLevelError, fmt.Sprintf(format, args...))
}

// formatQuery formata uma query SQL com seus argumentos
func formatQuery(query string, args []interface{}) string {
	if len(args) == 0 {
		return query
	}

	formatted := query
	argIndex := 0

	// PostgreSQL ($1, $2, ...). Replace from the highest index down so $1
	// does not clobber the prefix of $10.
	if strings.Contains(query, "$") {
		for i := len(args); i >= 1; i-- {
			formatted = strings.ReplaceAll(formatted, fmt.Sprintf("$%d", i), formatArg(args[i-1]))
		}
		return formatted
	}

	// MySQL/SQLite (?)
	var b strings.Builder
	for i := 0; i < len(formatted); i++ {
		if formatted[i] == '?' && argIndex < len(args) {
			b.WriteString(formatArg(args[argIndex]))
			argIndex++
			continue
		}
		b.WriteByte(formatted[i])
	}
	return b.String()
}

// formatArg formata um argumento para exibição
// Sanitiza dados sensíveis para prevenir vazamento em logs
func formatArg(arg interface{}) string {
	switch v := arg.(type) {
	case string:
		if isSensitiveData(v) {
			return "'***REDACTED***'"
		}
		if len(v) > 100 {
			return fmt.Sprintf("'%s...' (truncated)", v[:100])
		}
		return fmt.Sprintf("'%s'", v)
	case []byte:
		if len(v) > 0 {
			return "'***REDACTED***'"
		}
		return "''"
	case nil:
		return "NULL"
	default:
		str := fmt.Sprintf("%v", v)
		if isSensitiveData(str) {
			return "***REDACTED***"
		}
		return str
	}
}

// isSensitiveData verifica se uma string pode conter dados sensíveis
func isSensitiveData(s string) bool {
	s = strings.ToLower(s)
	sensitiveKeywords := []string{
		"password", "passwd", "secret", "token",
		"api_key", "apikey", "access_token", "refresh_token",
		"authorization", "credential", "private_key",
		"credit_card", "cvv",
	}

	for _, keyword := range sensitiveKeywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}

	// JWTs and common vendor key prefixes
	if len(s) > 20 && (strings.HasPrefix(s, "eyj") ||
		strings.HasPrefix(s, "sk_") ||
		strings.HasPrefix(s, "pk_") ||
		strings.HasPrefix(s, "ghp_") ||
		strings.HasPrefix(s, "xoxb-") ||
		strings.HasPrefix(s, "xoxp-")) {
		return true
	}

	return false
}

// Funções globais para facilitar uso

func Info(format string, args ...interface{}) {
	GetDefaultLogger().Info(format, args...)
}

func Warn(format string, args ...interface{}) {
	GetDefaultLogger().Warn(format, args...)
}

func Error(format string, args ...interface{}) {
	GetDefaultLogger().Error(format, args...)
}

// SetLogLevels configura os níveis de log do logger padrão
func SetLogLevels(levels []string) {
	GetDefaultLogger().SetLevels(levels)
}

// SetLogWriter configura o writer do logger padrão
func SetLogWriter(writer io.Writer) {
	l := GetDefaultLogger()
	l.mu.Lock()
	l.writer = writer
	l.mu.Unlock()
}

// FileLogger cria um logger que escreve em arquivo
func FileLogger(filename string, levels []string) (*Logger, error) {
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return NewLogger(levels, file), nil
}
