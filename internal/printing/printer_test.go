package printing

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tabin-ltd/kiosk/internal/domain"
)

func decodePayload(t *testing.T, raw []byte) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func TestReceiptPayload_OrderJob(t *testing.T) {
	raw, err := receiptPayload(domain.ReceiptJob{
		ID:      "job-1",
		Kitchen: true,
		Order:   domain.Order{ID: "order-1", Number: "12K"},
	})
	require.NoError(t, err)

	body := decodePayload(t, raw)
	assert.Equal(t, true, body["kitchen"])
	assert.Contains(t, body, "order")
	assert.NotContains(t, body, "summary")

	order, ok := body["order"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "12K", order["number"])
}

func TestReceiptPayload_SummaryJob(t *testing.T) {
	raw, err := receiptPayload(domain.ReceiptJob{
		ID:      "job-1",
		Summary: "SALES 2026-08-31",
	})
	require.NoError(t, err)

	body := decodePayload(t, raw)
	assert.Equal(t, "SALES 2026-08-31", body["summary"])
	assert.NotContains(t, body, "order")
}
