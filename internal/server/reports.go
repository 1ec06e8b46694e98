package server

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// ErrReportNotFound возвращается когда отчёт с указанным ID отсутствует.
var ErrReportNotFound = fmt.Errorf("отчёт не найден")

// ReportStore отдаёт содержимое отчёта по его идентификатору.
type ReportStore interface {
	Get(reportID string) ([]byte, error)
}

// reportIDPattern — допустимые идентификаторы отчётов.
// Жёсткий whitelist вместо чистки пути: id с разделителями и точками
// отклоняется целиком (защита от path traversal).
var reportIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// FileReportStore читает отчёты из директории: <dir>/<reportId>.json.
type FileReportStore struct {
	dir string
}

// NewFileReportStore создаёт хранилище отчётов поверх директории dir.
func NewFileReportStore(dir string) *FileReportStore {
	return &FileReportStore{dir: dir}
}

// Get возвращает содержимое отчёта reportID.
// Возвращает ErrReportNotFound для неизвестного или недопустимого ID.
func (f *FileReportStore) Get(reportID string) ([]byte, error) {
	if !reportIDPattern.MatchString(reportID) {
		return nil, ErrReportNotFound
	}
	data, err := os.ReadFile(filepath.Join(f.dir, reportID+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("чтение отчёта %s: %w", reportID, err)
	}
	return data, nil
}
