package eftpos

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultSmartpayBaseURL = "https://api.smart-connect.cloud/POS"

// Smartpay terminals are cloud paired: creating a transaction returns a
// polling URL and the outcome is fetched from there until it settles.
type Smartpay struct {
	client  *breakerClient
	baseURL string

	pollInterval time.Duration
	// delayAfter is how long a pending transaction runs before the single
	// delayed notification fires.
	delayAfter time.Duration
}

func NewSmartpay(httpClient *http.Client) *Smartpay {
	return &Smartpay{
		client:       newBreakerClient("smartpay", httpClient),
		baseURL:      defaultSmartpayBaseURL,
		pollInterval: 2 * time.Second,
		delayAfter:   60 * time.Second,
	}
}

type smartpayCreateRequest struct {
	TransactionType string `json:"transactionType"`
	AmountCents     int    `json:"amountCents"`
}

type smartpayPollResponse struct {
	Data struct {
		TransactionResult string `json:"transactionResult"`
		DisplayMessage    string `json:"displayMessage"`
	} `json:"data"`
}

func (s *Smartpay) CreateTransaction(ctx context.Context, amountCents int, reference string) (string, error) {
	body, err := json.Marshal(smartpayCreateRequest{
		TransactionType: reference,
		AmountCents:     amountCents,
	})
	if err != nil {
		return "", fmt.Errorf("marshal smartpay request: %w", err)
	}

	data, err := s.client.do(ctx, http.MethodPost, s.baseURL+"/Transaction", body, nil)
	if err != nil {
		return "", fmt.Errorf("smartpay create transaction: %w", err)
	}

	var resp struct {
		PollingURL string `json:"pollingUrl"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("decode smartpay response: %w", err)
	}
	if resp.PollingURL == "" {
		return "", fmt.Errorf("smartpay response missing polling url")
	}
	return resp.PollingURL, nil
}

func (s *Smartpay) PollForOutcome(ctx context.Context, pollingURL string, onProgress ProgressFunc) (*TransactionOutcome, error) {
	started := time.Now()
	delayedShown := false

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		data, err := s.client.do(ctx, http.MethodGet, pollingURL, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("smartpay poll: %w", err)
		}

		var resp smartpayPollResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, fmt.Errorf("decode smartpay poll response: %w", err)
		}

		switch resp.Data.TransactionResult {
		case "OK-ACCEPTED":
			return &TransactionOutcome{Result: ResultSuccess}, nil
		case "OK-DECLINED":
			return &TransactionOutcome{Result: ResultFail, Message: "Transaction Declined! Please try again."}, nil
		case "CANCELLED":
			return &TransactionOutcome{Result: ResultFail, Message: "Transaction Cancelled!"}, nil
		case "FAILED":
			return &TransactionOutcome{Result: ResultFail, Message: "Transaction Failed! Please try again."}, nil
		}

		if resp.Data.DisplayMessage != "" && onProgress != nil {
			onProgress(Progress{Message: resp.Data.DisplayMessage})
		}

		if !delayedShown && time.Since(started) > s.delayAfter {
			delayedShown = true
			if onProgress != nil {
				onProgress(Progress{Delayed: true})
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
