package logging

// Форматы вывода логов.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Уровни логирования.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Назначения вывода логов.
const (
	OutputStderr = "stderr"
	OutputFile   = "file"
)

// Значения по умолчанию. Единый источник истины для ProvideLogger
// и getDefaultLoggingConfig.
const (
	DefaultLevel      = LevelInfo
	DefaultFormat     = FormatText
	DefaultOutput     = OutputStderr
	DefaultFilePath   = "/var/log/apk-alert.log"
	DefaultMaxSize    = 100 // МБ
	DefaultMaxBackups = 3
	DefaultMaxAge     = 7 // дней
	DefaultCompress   = true
)

// DefaultConfig возвращает Config со значениями по умолчанию.
func DefaultConfig() Config {
	return Config{
		Level:      DefaultLevel,
		Format:     DefaultFormat,
		Output:     DefaultOutput,
		FilePath:   DefaultFilePath,
		MaxSize:    DefaultMaxSize,
		MaxBackups: DefaultMaxBackups,
		MaxAge:     DefaultMaxAge,
		Compress:   DefaultCompress,
	}
}

// Config — настройки логирования.
type Config struct {
	// Format: "json" или "text".
	Format string

	// Level: минимальный уровень ("debug", "info", "warn", "error").
	Level string

	// Output: "stderr" или "file".
	Output string

	// FilePath — путь к файлу логов при Output="file".
	FilePath string

	// MaxSize — размер файла в МБ до ротации.
	MaxSize int

	// MaxBackups — число хранимых копий.
	MaxBackups int

	// MaxAge — возраст копий в днях.
	MaxAge int

	// Compress — сжимать ли копии в gzip.
	Compress bool
}
