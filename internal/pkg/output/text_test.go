package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kargones/apk-alert/internal/pkg/alerting"
)

func TestNewTextWriter(t *testing.T) {
	writer := NewTextWriter()
	assert.NotNil(t, writer)
}

func TestTextWriter_ImplementsWriter(_ *testing.T) {
	var _ Writer = (*TextWriter)(nil)
}

func TestTextWriter_Write_Nil(t *testing.T) {
	writer := NewTextWriter()
	var buf bytes.Buffer
	err := writer.Write(&buf, nil)
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestTextWriter_Write_Success(t *testing.T) {
	writer := NewTextWriter()
	var buf bytes.Buffer
	err := writer.Write(&buf, dispatchResult())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "dispatch: success")
	assert.Contains(t, out, "run-42")
	assert.Contains(t, out, "successRate")
	assert.Contains(t, out, "slack")
}

func TestTextWriter_Write_Error(t *testing.T) {
	result := &Result{
		Status:  StatusError,
		Command: "dispatch",
		Error: &ErrorInfo{
			Code:    "CONFIG.LOAD_FAILED",
			Message: "не удалось загрузить конфигурацию",
		},
	}

	writer := NewTextWriter()
	var buf bytes.Buffer
	err := writer.Write(&buf, result)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "dispatch: error")
	assert.Contains(t, out, "CONFIG.LOAD_FAILED")
	assert.Contains(t, out, "не удалось загрузить конфигурацию")
}

func TestTextWriter_Write_NotTriggered(t *testing.T) {
	result := &Result{
		Status:  StatusSuccess,
		Command: "dispatch",
		Dispatch: &alerting.DispatchResult{
			DispatchID: "d-2",
			ReportID:   "run-1",
			Triggered:  false,
		},
	}

	writer := NewTextWriter()
	var buf bytes.Buffer
	err := writer.Write(&buf, result)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "алерт не требуется")
}

func TestTextWriter_Write_FailedDelivery(t *testing.T) {
	result := &Result{
		Status:  StatusSuccess,
		Command: "dispatch",
		Dispatch: &alerting.DispatchResult{
			DispatchID:    "d-3",
			ReportID:      "run-1",
			Triggered:     true,
			BreachedRules: []string{"responseTime"},
			Outcomes: []alerting.DeliveryOutcome{
				{Channel: "telegram", Success: false, Attempts: 3, LastError: "chat not found"},
			},
			DataNotes: []string{"criticalAlerts отсутствует"},
		},
	}

	writer := NewTextWriter()
	var buf bytes.Buffer
	err := writer.Write(&buf, result)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "не доставлено за 3 попыток")
	assert.Contains(t, out, "chat not found")
	assert.Contains(t, out, "criticalAlerts отсутствует")
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		ms       int64
		expected string
	}{
		{500, "500мс"},
		{1500, "1.5с"},
		{59000, "59.0с"},
		{61000, "1м 1с"},
		{125000, "2м 5с"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, formatDuration(tt.ms))
	}
}
