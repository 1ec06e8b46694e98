// Код сгенерирован скриптом generate-version.sh при сборке.
// НЕ РЕДАКТИРОВАТЬ ВРУЧНУЮ.
package constants

const (
	// Version - версия приложения
	Version = "0.4.2"
	// PreCommitHash - хеш коммита сборки
	PreCommitHash = "dev"
)
