package eftpos

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultTyroBaseURL = "https://iclientsimulator.test.tyro.com"

// Tyro terminals pair to the register: the pairing handshake yields an
// integration key which authorizes subsequent purchases. Tyro is the only
// provider that can force-cancel an in-flight transaction.
type Tyro struct {
	client     *breakerClient
	baseURL    string
	merchantID string

	integrationKey string
	pollInterval   time.Duration
}

func NewTyro(httpClient *http.Client, merchantID string) *Tyro {
	return &Tyro{
		client:       newBreakerClient("tyro", httpClient),
		baseURL:      defaultTyroBaseURL,
		merchantID:   merchantID,
		pollInterval: 2 * time.Second,
	}
}

// Pair runs the pairing handshake against a terminal and stores the returned
// integration key for subsequent transactions. onProgress receives the
// terminal's pairing prompts.
func (t *Tyro) Pair(ctx context.Context, terminalID string, onProgress ProgressFunc) (string, error) {
	body, err := json.Marshal(map[string]string{
		"merchantId": t.merchantID,
		"terminalId": terminalID,
	})
	if err != nil {
		return "", fmt.Errorf("marshal tyro pairing request: %w", err)
	}

	data, err := t.client.do(ctx, http.MethodPost, t.baseURL+"/pair", body, nil)
	if err != nil {
		return "", fmt.Errorf("tyro pairing: %w", err)
	}

	var resp struct {
		IntegrationKey string `json:"integrationKey"`
		Message        string `json:"message"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("decode tyro pairing response: %w", err)
	}
	if resp.Message != "" && onProgress != nil {
		onProgress(Progress{Message: resp.Message})
	}
	if resp.IntegrationKey == "" {
		return "", fmt.Errorf("tyro pairing returned no integration key")
	}

	t.integrationKey = resp.IntegrationKey
	return resp.IntegrationKey, nil
}

func (t *Tyro) CreateTransaction(ctx context.Context, amountCents int, reference string) (string, error) {
	body, err := json.Marshal(map[string]interface{}{
		"merchantId":     t.merchantID,
		"integrationKey": t.integrationKey,
		"amountCents":    amountCents,
		"reference":      reference,
	})
	if err != nil {
		return "", fmt.Errorf("marshal tyro request: %w", err)
	}

	data, err := t.client.do(ctx, http.MethodPost, t.baseURL+"/purchase", body, nil)
	if err != nil {
		return "", fmt.Errorf("tyro purchase: %w", err)
	}

	var resp struct {
		TransactionID string `json:"transactionId"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("decode tyro response: %w", err)
	}
	return resp.TransactionID, nil
}

func (t *Tyro) PollForOutcome(ctx context.Context, ref string, onProgress ProgressFunc) (*TransactionOutcome, error) {
	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()

	for {
		data, err := t.client.do(ctx, http.MethodGet, t.baseURL+"/purchase/"+ref, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("tyro poll: %w", err)
		}

		var resp struct {
			Status  string `json:"status"`
			Receipt string `json:"customerReceipt"`
			Message string `json:"statusMessage"`
		}
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, fmt.Errorf("decode tyro status: %w", err)
		}

		switch resp.Status {
		case "APPROVED":
			return &TransactionOutcome{Result: ResultSuccess, Receipt: resp.Receipt}, nil
		case "DECLINED":
			return &TransactionOutcome{Result: ResultFail, Message: "Transaction Declined! Please try again."}, nil
		case "CANCELLED":
			return &TransactionOutcome{Result: ResultFail, Message: "Transaction Cancelled!"}, nil
		case "REVERSED":
			return &TransactionOutcome{Result: ResultFail, Message: "Transaction Reversed!"}, nil
		}

		if resp.Message != "" && onProgress != nil {
			onProgress(Progress{Message: resp.Message})
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// CancelTransaction asks the terminal to abandon an in-flight purchase.
func (t *Tyro) CancelTransaction(ctx context.Context, ref string) error {
	if _, err := t.client.do(ctx, http.MethodPost, t.baseURL+"/purchase/"+ref+"/cancel", nil, nil); err != nil {
		return fmt.Errorf("tyro cancel: %w", err)
	}
	return nil
}
