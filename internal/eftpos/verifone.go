package eftpos

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Verifone terminals are addressed directly on the local network. The
// purchase call blocks on the terminal side, so the poll is a single result
// fetch once the purchase has been lodged.
type Verifone struct {
	client *breakerClient
	ip     string
	port   string
}

func NewVerifone(httpClient *http.Client, ip, port string) *Verifone {
	return &Verifone{
		client: newBreakerClient("verifone", httpClient),
		ip:     ip,
		port:   port,
	}
}

func (v *Verifone) endpoint(path string) string {
	return fmt.Sprintf("http://%s:%s%s", v.ip, v.port, path)
}

type verifonePurchaseRequest struct {
	AmountCents int    `json:"amountCents"`
	Reference   string `json:"reference"`
}

type verifoneResultResponse struct {
	Outcome string `json:"outcome"`
	Receipt string `json:"receipt"`
}

func (v *Verifone) CreateTransaction(ctx context.Context, amountCents int, reference string) (string, error) {
	body, err := json.Marshal(verifonePurchaseRequest{AmountCents: amountCents, Reference: reference})
	if err != nil {
		return "", fmt.Errorf("marshal verifone request: %w", err)
	}

	data, err := v.client.do(ctx, http.MethodPost, v.endpoint("/purchase"), body, nil)
	if err != nil {
		return "", fmt.Errorf("verifone purchase: %w", err)
	}

	var resp struct {
		TransactionID string `json:"transactionId"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("decode verifone response: %w", err)
	}
	return resp.TransactionID, nil
}

func (v *Verifone) PollForOutcome(ctx context.Context, ref string, onProgress ProgressFunc) (*TransactionOutcome, error) {
	data, err := v.client.do(ctx, http.MethodGet, v.endpoint("/result/"+ref), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("verifone result: %w", err)
	}

	var resp verifoneResultResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode verifone result: %w", err)
	}

	return verifoneOutcome(resp), nil
}

func verifoneOutcome(resp verifoneResultResponse) *TransactionOutcome {
	switch resp.Outcome {
	case "APPROVED":
		return &TransactionOutcome{Result: ResultSuccess, Receipt: resp.Receipt}
	case "APPROVED_WITH_SIGNATURE":
		// Unattended mode has nobody to check a signature.
		return &TransactionOutcome{Result: ResultFail, Message: "Transaction Approved With Signature Not Allowed In Kiosk Mode!"}
	case "CANCELLED":
		return &TransactionOutcome{Result: ResultFail, Message: "Transaction Cancelled!"}
	case "DECLINED":
		return &TransactionOutcome{Result: ResultFail, Message: "Transaction Declined! Please try again."}
	case "HOST_UNAVAILABLE":
		return &TransactionOutcome{Result: ResultFail, Message: "Transaction Host Unavailable! Please check if the device is powered on and online."}
	case "SYSTEM_ERROR":
		return &TransactionOutcome{Result: ResultFail, Message: "Transaction System Error! Please try again later."}
	case "TERMINAL_BUSY":
		return &TransactionOutcome{Result: ResultFail, Message: "Terminal Is Busy! Please cancel the previous transaction before proceeding."}
	}
	return &TransactionOutcome{Result: ResultFail, Message: "Transaction Failed!"}
}
