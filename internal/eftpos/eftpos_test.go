package eftpos

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tabin-ltd/kiosk/internal/domain"
)

func TestProviderFor(t *testing.T) {
	register := &domain.Register{
		EftposProvider:  domain.EftposProviderVerifone,
		EftposIPAddress: "192.168.1.10",
		EftposPort:      "4242",
	}

	terminal, err := ProviderFor(register, nil)
	require.NoError(t, err)
	assert.IsType(t, &Verifone{}, terminal)

	register.EftposProvider = domain.EftposProviderTyro
	terminal, err = ProviderFor(register, nil)
	require.NoError(t, err)
	_, ok := terminal.(Canceller)
	assert.True(t, ok, "tyro supports force-cancel")

	register.EftposProvider = "UNKNOWN"
	_, err = ProviderFor(register, nil)
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestSmartpay_PollOutcomes(t *testing.T) {
	var polls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var resp smartpayPollResponse
		if polls.Add(1) < 3 {
			resp.Data.DisplayMessage = "Processing..."
		} else {
			resp.Data.TransactionResult = "OK-ACCEPTED"
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	sp := NewSmartpay(server.Client())
	sp.pollInterval = time.Millisecond

	var progress []Progress
	outcome, err := sp.PollForOutcome(context.Background(), server.URL, func(p Progress) {
		progress = append(progress, p)
	})
	require.NoError(t, err)

	assert.Equal(t, ResultSuccess, outcome.Result)
	require.NotEmpty(t, progress)
	assert.Equal(t, "Processing...", progress[0].Message)
}

func TestSmartpay_DelayedFiresOnce(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(smartpayPollResponse{})
	}))
	defer server.Close()

	sp := NewSmartpay(server.Client())
	sp.pollInterval = time.Millisecond
	sp.delayAfter = 0

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	delays := 0
	_, err := sp.PollForOutcome(ctx, server.URL, func(p Progress) {
		if p.Delayed {
			delays++
		}
	})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, delays, "the delayed notification fires at most once per attempt")
}

func TestVerifone_OutcomeVocabulary(t *testing.T) {
	cases := []struct {
		outcome string
		want    Result
	}{
		{"APPROVED", ResultSuccess},
		{"APPROVED_WITH_SIGNATURE", ResultFail},
		{"CANCELLED", ResultFail},
		{"DECLINED", ResultFail},
		{"HOST_UNAVAILABLE", ResultFail},
		{"SYSTEM_ERROR", ResultFail},
		{"TERMINAL_BUSY", ResultFail},
		{"SOMETHING_ELSE", ResultFail},
	}

	for _, tc := range cases {
		t.Run(tc.outcome, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(verifoneResultResponse{Outcome: tc.outcome, Receipt: "RECEIPT"})
			}))
			defer server.Close()

			host, port, err := net.SplitHostPort(server.Listener.Addr().String())
			require.NoError(t, err)

			v := NewVerifone(server.Client(), host, port)

			outcome, err := v.PollForOutcome(context.Background(), "txn-1", nil)
			require.NoError(t, err)

			assert.Equal(t, tc.want, outcome.Result)
			if tc.want == ResultSuccess {
				assert.Equal(t, "RECEIPT", outcome.Receipt)
			} else {
				assert.NotEmpty(t, outcome.Message)
			}
		})
	}
}

func TestWindcave_SuccessCarriesReceipt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(windcaveStatusResponse{Complete: true, Outcome: "ACCEPTED", Receipt: "EFTPOS RECEIPT"})
	}))
	defer server.Close()

	wc := NewWindcave(server.Client(), "station-1")
	wc.baseURL = server.URL
	wc.pollInterval = time.Millisecond

	outcome, err := wc.PollForOutcome(context.Background(), "txn-1", nil)
	require.NoError(t, err)

	assert.Equal(t, ResultSuccess, outcome.Result)
	assert.Equal(t, "EFTPOS RECEIPT", outcome.Receipt)
}

func TestTyro_PairStoresIntegrationKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"integrationKey": "key-123",
			"message":        "Press YES on terminal",
		})
	}))
	defer server.Close()

	ty := NewTyro(server.Client(), "merchant-1")
	ty.baseURL = server.URL

	var messages []string
	key, err := ty.Pair(context.Background(), "terminal-1", func(p Progress) {
		messages = append(messages, p.Message)
	})
	require.NoError(t, err)

	assert.Equal(t, "key-123", key)
	assert.Equal(t, "key-123", ty.integrationKey)
	assert.Contains(t, messages, "Press YES on terminal")
}
