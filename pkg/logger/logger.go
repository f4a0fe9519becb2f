package logger

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/natefinch/lumberjack"
)

// Category represents a log category
type Category string

const (
	CategoryAuth      Category = "auth"
	CategoryAPI       Category = "api"
	CategoryDB        Category = "db"
	CategoryAnalysis  Category = "analysis"
	CategoryStorage   Category = "storage"
	CategoryWebSocket Category = "websocket"
	CategoryScheduler Category = "scheduler"
	CategoryStartup   Category = "startup"
)

// AllCategories lists every category that owns a log file.
var AllCategories = []Category{
	CategoryAuth, CategoryAPI, CategoryDB, CategoryAnalysis,
	CategoryStorage, CategoryWebSocket, CategoryScheduler, CategoryStartup,
}

// Level represents log level
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var levelRank = map[Level]int{LevelDebug: 0, LevelInfo: 1, LevelWarn: 2, LevelError: 3}

// LogEntry represents a structured log entry
type LogEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     Level                  `json:"level"`
	Category  Category               `json:"category"`
	Action    string                 `json:"action"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	UserID    string                 `json:"user_id,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Duration  string                 `json:"duration,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// Options controls file rotation and console output.
type Options struct {
	Dir        string
	Console    bool
	MinLevel   Level
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Logger writes one rotating JSON-lines file per category.
type Logger struct {
	mu       sync.Mutex
	opts     Options
	writers  map[Category]*lumberjack.Logger
	minLevel Level
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// Init initializes the default logger
func Init(logDir string, console bool) error {
	return InitWithOptions(Options{Dir: logDir, Console: console})
}

// InitWithOptions initializes the default logger with rotation settings.
func InitWithOptions(opts Options) error {
	var err error
	once.Do(func() {
		defaultLogger, err = NewLogger(opts)
	})
	return err
}

// NewLogger creates a new logger
func NewLogger(opts Options) (*Logger, error) {
	if opts.Dir == "" {
		opts.Dir = "logs"
	}
	if opts.MaxSizeMB <= 0 {
		opts.MaxSizeMB = 50
	}
	if opts.MaxBackups <= 0 {
		opts.MaxBackups = 7
	}
	if opts.MaxAgeDays <= 0 {
		opts.MaxAgeDays = 14
	}
	if opts.MinLevel == "" {
		opts.MinLevel = LevelDebug
	}
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	return &Logger{
		opts:     opts,
		writers:  make(map[Category]*lumberjack.Logger),
		minLevel: opts.MinLevel,
	}, nil
}

func (l *Logger) fileName(category Category) string {
	return filepath.Join(l.opts.Dir, string(category)+".log")
}

func (l *Logger) writer(category Category) *lumberjack.Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	if w, ok := l.writers[category]; ok {
		return w
	}
	w := &lumberjack.Logger{
		Filename:   l.fileName(category),
		MaxSize:    l.opts.MaxSizeMB,
		MaxBackups: l.opts.MaxBackups,
		MaxAge:     l.opts.MaxAgeDays,
		Compress:   true,
	}
	l.writers[category] = w
	return w
}

// Log writes a log entry
func (l *Logger) Log(entry LogEntry) {
	l.mu.Lock()
	minLevel := l.minLevel
	l.mu.Unlock()
	if levelRank[entry.Level] < levelRank[minLevel] {
		return
	}
	entry.Timestamp = time.Now()

	jsonData, err := json.Marshal(entry)
	if err != nil {
		fmt.Printf("Error marshaling log entry: %v\n", err)
		return
	}

	w := l.writer(entry.Category)
	if _, err := w.Write(append(jsonData, '\n')); err != nil {
		fmt.Printf("Error writing log entry: %v\n", err)
	}

	if l.opts.Console {
		l.printToConsole(entry)
	}
}

var levelColors = map[Level]string{
	LevelDebug: "\033[36m",
	LevelInfo:  "\033[32m",
	LevelWarn:  "\033[33m",
	LevelError: "\033[31m",
}

func (l *Logger) printToConsole(entry LogEntry) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%s]\033[0m [%s] [%s] %s: %s",
		levelColors[entry.Level],
		entry.Level,
		entry.Timestamp.Format("15:04:05.000"),
		entry.Category,
		entry.Action,
		entry.Message,
	)
	if entry.UserID != "" {
		fmt.Fprintf(&b, " (user: %s)", entry.UserID)
	}
	if entry.Duration != "" {
		fmt.Fprintf(&b, " (duration: %s)", entry.Duration)
	}
	if entry.Error != "" {
		fmt.Fprintf(&b, " ERROR: %s", entry.Error)
	}
	if len(entry.Data) > 0 {
		dataJSON, _ := json.Marshal(entry.Data)
		fmt.Fprintf(&b, " %s", dataJSON)
	}
	fmt.Println(b.String())
}

// SetLevel changes the minimum level; unknown levels are ignored.
func (l *Logger) SetLevel(level Level) {
	if _, ok := levelRank[level]; !ok {
		return
	}
	l.mu.Lock()
	l.minLevel = level
	l.mu.Unlock()
}

// Close closes all file writers
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, w := range l.writers {
		_ = w.Close()
	}
	l.writers = make(map[Category]*lumberjack.Logger)
}

// Default returns the default logger. Without a prior Init it writes to a
// directory under os.TempDir, which keeps tests out of the source tree.
func Default() *Logger {
	_ = InitWithOptions(Options{Dir: filepath.Join(os.TempDir(), "photocritic-logs")})
	return defaultLogger
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Info logs info level message
func Info(category Category, action, message string, data map[string]interface{}) {
	Default().Log(LogEntry{Level: LevelInfo, Category: category, Action: action, Message: message, Data: data})
}

// Error logs error level message
func Error(category Category, action, message string, err error, data map[string]interface{}) {
	Default().Log(LogEntry{Level: LevelError, Category: category, Action: action, Message: message, Error: errString(err), Data: data})
}

// Debug logs debug level message
func Debug(category Category, action, message string, data map[string]interface{}) {
	Default().Log(LogEntry{Level: LevelDebug, Category: category, Action: action, Message: message, Data: data})
}

// Warn logs warning level message
func Warn(category Category, action, message string, data map[string]interface{}) {
	Default().Log(LogEntry{Level: LevelWarn, Category: category, Action: action, Message: message, Data: data})
}

// Auth logs authentication related events
func Auth(action, message string, data map[string]interface{}) {
	Info(CategoryAuth, action, message, data)
}

// AuthError logs authentication errors
func AuthError(action, message string, err error, data map[string]interface{}) {
	Error(CategoryAuth, action, message, err, data)
}

// Analysis logs analysis pipeline events
func Analysis(action, message string, data map[string]interface{}) {
	Info(CategoryAnalysis, action, message, data)
}

// AnalysisWarn logs degraded analysis outcomes (fallback results)
func AnalysisWarn(action, message string, data map[string]interface{}) {
	Warn(CategoryAnalysis, action, message, data)
}

// AnalysisError logs analysis failures
func AnalysisError(action, message string, err error, data map[string]interface{}) {
	Error(CategoryAnalysis, action, message, err, data)
}

// Storage logs object storage operations
func Storage(action, message string, data map[string]interface{}) {
	Info(CategoryStorage, action, message, data)
}

// StorageError logs object storage errors
func StorageError(action, message string, err error, data map[string]interface{}) {
	Error(CategoryStorage, action, message, err, data)
}

// WebSocket logs WebSocket related events
func WebSocket(action, message string, data map[string]interface{}) {
	Info(CategoryWebSocket, action, message, data)
}

// WebSocketError logs WebSocket errors
func WebSocketError(action, message string, err error, data map[string]interface{}) {
	Error(CategoryWebSocket, action, message, err, data)
}

// Scheduler logs scheduled job events
func Scheduler(action, message string, data map[string]interface{}) {
	Info(CategoryScheduler, action, message, data)
}

// SchedulerWarn logs scheduler warnings
func SchedulerWarn(action, message string, data map[string]interface{}) {
	Warn(CategoryScheduler, action, message, data)
}

// SchedulerError logs scheduler errors
func SchedulerError(action, message string, err error, data map[string]interface{}) {
	Error(CategoryScheduler, action, message, err, data)
}

// DB logs database operations
func DB(action, message string, data map[string]interface{}) {
	Debug(CategoryDB, action, message, data)
}

// DBError logs database errors
func DBError(action, message string, err error, data map[string]interface{}) {
	Error(CategoryDB, action, message, err, data)
}

// Startup logs startup/initialization events
func Startup(action, message string, data map[string]interface{}) {
	Info(CategoryStartup, action, message, data)
}

// StartupError logs startup errors
func StartupError(action, message string, err error, data map[string]interface{}) {
	Error(CategoryStartup, action, message, err, data)
}

// StartupWarn logs startup warnings
func StartupWarn(action, message string, data map[string]interface{}) {
	Warn(CategoryStartup, action, message, data)
}

// GetTypeName returns the dynamic type of v for diagnostics.
func GetTypeName(v interface{}) string {
	return fmt.Sprintf("%T", v)
}

// ReadLogsOptions options for reading logs
type ReadLogsOptions struct {
	Category Category // empty = all
	Level    Level    // empty = all
	Lines    int      // default 100, max 1000
	Search   string   // matched against message, action and error
}

// ReadLogs reads log entries from the default logger's files
func ReadLogs(opts ReadLogsOptions) ([]LogEntry, error) {
	return Default().ReadLogs(opts)
}

// ReadLogs reads the active file of each category, newest entries first.
// Rotated backups are not scanned.
func (l *Logger) ReadLogs(opts ReadLogsOptions) ([]LogEntry, error) {
	if opts.Lines <= 0 {
		opts.Lines = 100
	}
	if opts.Lines > 1000 {
		opts.Lines = 1000
	}

	categories := AllCategories
	if opts.Category != "" {
		categories = []Category{opts.Category}
	}
	search := strings.ToLower(opts.Search)

	var entries []LogEntry
	for _, cat := range categories {
		f, err := os.Open(l.fileName(cat))
		if err != nil {
			continue
		}
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			var entry LogEntry
			if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
				continue
			}
			if opts.Level != "" && entry.Level != opts.Level {
				continue
			}
			if search != "" &&
				!strings.Contains(strings.ToLower(entry.Message), search) &&
				!strings.Contains(strings.ToLower(entry.Action), search) &&
				!strings.Contains(strings.ToLower(entry.Error), search) {
				continue
			}
			entries = append(entries, entry)
		}
		f.Close()
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	if len(entries) > opts.Lines {
		entries = entries[:opts.Lines]
	}
	return entries, nil
}

// GetLogDir returns the log directory path
func GetLogDir() string {
	return Default().opts.Dir
}

// ListLogFiles returns list of log files
func ListLogFiles() ([]string, error) {
	return Default().ListLogFiles()
}

// ListLogFiles returns active and rotated log files in the log directory
func (l *Logger) ListLogFiles() ([]string, error) {
	dirEntries, err := os.ReadDir(l.opts.Dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range dirEntries {
		name := entry.Name()
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(name, ".log") || strings.HasSuffix(name, ".log.gz") {
			files = append(files, name)
		}
	}
	return files, nil
}
