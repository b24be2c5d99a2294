package eftpos

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultWindcaveBaseURL = "https://sec.windcave.com/pxmi3"

// Windcave terminals are addressed by station id against the hosted gateway.
// Success responses carry the printable eftpos receipt.
type Windcave struct {
	client    *breakerClient
	baseURL   string
	stationID string

	pollInterval time.Duration
}

func NewWindcave(httpClient *http.Client, stationID string) *Windcave {
	return &Windcave{
		client:       newBreakerClient("windcave", httpClient),
		baseURL:      defaultWindcaveBaseURL,
		stationID:    stationID,
		pollInterval: 2 * time.Second,
	}
}

type windcaveCreateRequest struct {
	StationID   string `json:"stationId"`
	AmountCents int    `json:"amountCents"`
	TxnType     string `json:"txnType"`
}

type windcaveStatusResponse struct {
	Complete bool   `json:"complete"`
	Outcome  string `json:"outcome"`
	Receipt  string `json:"receipt"`
	Display  string `json:"displayLine,omitempty"`
}

func (w *Windcave) CreateTransaction(ctx context.Context, amountCents int, reference string) (string, error) {
	body, err := json.Marshal(windcaveCreateRequest{
		StationID:   w.stationID,
		AmountCents: amountCents,
		TxnType:     reference,
	})
	if err != nil {
		return "", fmt.Errorf("marshal windcave request: %w", err)
	}

	data, err := w.client.do(ctx, http.MethodPost, w.baseURL+"/transaction", body, nil)
	if err != nil {
		return "", fmt.Errorf("windcave create transaction: %w", err)
	}

	var resp struct {
		TxnRef string `json:"txnRef"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("decode windcave response: %w", err)
	}
	if resp.TxnRef == "" {
		return "", fmt.Errorf("windcave response missing txnRef")
	}
	return resp.TxnRef, nil
}

func (w *Windcave) PollForOutcome(ctx context.Context, txnRef string, onProgress ProgressFunc) (*TransactionOutcome, error) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	url := fmt.Sprintf("%s/transaction/%s/status?stationId=%s", w.baseURL, txnRef, w.stationID)

	for {
		data, err := w.client.do(ctx, http.MethodGet, url, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("windcave poll: %w", err)
		}

		var resp windcaveStatusResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, fmt.Errorf("decode windcave status: %w", err)
		}

		if resp.Complete {
			switch resp.Outcome {
			case "ACCEPTED":
				return &TransactionOutcome{Result: ResultSuccess, Receipt: resp.Receipt}, nil
			case "DECLINED":
				return &TransactionOutcome{Result: ResultFail, Message: "Transaction Declined! Please try again."}, nil
			case "CANCELLED":
				return &TransactionOutcome{Result: ResultFail, Message: "Transaction Cancelled!"}, nil
			}
			return &TransactionOutcome{Result: ResultFail, Message: "Transaction Failed!"}, nil
		}

		if resp.Display != "" && onProgress != nil {
			onProgress(Progress{Message: resp.Display})
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
