// Package testutil содержит общие утилиты для тестирования.
package testutil

import (
	"io"
	"os"
	"testing"
)

// CaptureStdout выполняет fn и возвращает всё, что fn записала в os.Stdout.
// Чтение идёт в отдельной горутине, чтобы вывод больше размера буфера
// pipe не блокировал fn.
func CaptureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("не удалось создать pipe для stdout: %v", err)
	}

	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	done := make(chan string, 1)
	go func() {
		data, _ := io.ReadAll(r)
		done <- string(data)
	}()

	fn()

	_ = w.Close()
	return <-done
}
