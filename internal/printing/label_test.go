package printing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func labelTestClient(t *testing.T, handler http.HandlerFunc) (*LabelClient, string) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewLabelClient(server.Client())
	client.pollInterval = time.Millisecond
	return client, server.URL
}

func TestPrintLabels_PollsUntilDone(t *testing.T) {
	var statusCalls atomic.Int32

	client, url := labelTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/checkStatus") {
			resp := labelResponse{Result: "progress", RequestID: 1, ResponseID: "r1"}
			if statusCalls.Add(1) >= 2 {
				resp.Result = "done"
			}
			json.NewEncoder(w).Encode(resp)
			return
		}
		json.NewEncoder(w).Encode(labelResponse{Result: "ready", RequestID: 1, ResponseID: "r1"})
	})

	// The job URL embeds the fixed label-server port, so the protocol is
	// exercised against the test server directly.
	resp, err := client.post(context.Background(), url, []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, "ready", resp.Result)

	require.NoError(t, client.waitForCompletion(context.Background(), url, resp))
	assert.GreaterOrEqual(t, statusCalls.Load(), int32(2))
}

func TestWaitForCompletion_WaitsBetweenPolls(t *testing.T) {
	var statusCalls atomic.Int32

	client, url := labelTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/checkStatus") {
			statusCalls.Add(1)
		}
		json.NewEncoder(w).Encode(labelResponse{Result: "progress", RequestID: 1, ResponseID: "r1"})
	})
	client.pollInterval = 20 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	resp, err := client.post(ctx, url, []byte(`{}`))
	require.NoError(t, err)

	err = client.waitForCompletion(ctx, url, resp)
	require.Error(t, err)
	// A job that never finishes polls once per interval, not back to back.
	assert.LessOrEqual(t, statusCalls.Load(), int32(4))
}

func TestPost_TerminalResults(t *testing.T) {
	client, url := labelTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(labelResponse{Result: "error"})
	})

	resp, err := client.post(context.Background(), url, []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Result)
}

func TestPost_NotFoundMeansNoPrinters(t *testing.T) {
	client, url := labelTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.post(context.Background(), url, []byte(`{}`))
	assert.ErrorIs(t, err, ErrNoPrinters)
}

func TestServerURL(t *testing.T) {
	assert.Equal(t, "http://192.168.1.50:18080/WebPrintSDK/Printer1", serverURL("192.168.1.50", "Printer1"))
}
