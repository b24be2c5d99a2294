// Package printing delivers order receipts and labels to the register's
// configured printers, queues failures for retry and prints receipts for
// orders placed on other registers.
package printing

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tabin-ltd/kiosk/internal/domain"
)

// ReceiptPrinter is the native print bridge. On devices without one the noop
// implementation stands in and every print silently succeeds.
type ReceiptPrinter interface {
	PrintReceipt(ctx context.Context, job domain.ReceiptJob) error
}

type NoopPrinter struct{}

func (NoopPrinter) PrintReceipt(ctx context.Context, job domain.ReceiptJob) error {
	return nil
}

// WebPrinter sends receipts through the same local print server the label
// client talks to. The job's address and printer id select the target.
type WebPrinter struct {
	client *LabelClient
}

func NewWebPrinter(client *LabelClient) *WebPrinter {
	return &WebPrinter{client: client}
}

func (p *WebPrinter) PrintReceipt(ctx context.Context, job domain.ReceiptJob) error {
	url := serverURL(job.Address, job.PrinterID)

	payload, err := receiptPayload(job)
	if err != nil {
		return err
	}

	resp, err := p.client.post(ctx, url, payload)
	if err != nil {
		return err
	}

	switch resp.Result {
	case "ready", "progress":
		return p.client.waitForCompletion(ctx, url, resp)
	case "error":
		return ErrPrintFailed
	case "duplicated":
		return ErrDuplicatedJob
	default:
		return fmt.Errorf("%w: unexpected result %q", ErrPrintFailed, resp.Result)
	}
}

func receiptPayload(job domain.ReceiptJob) ([]byte, error) {
	body := map[string]interface{}{
		"kitchen": job.Kitchen,
	}
	// A job carries either a sales summary or an order, never both.
	if job.Summary != "" {
		body["summary"] = job.Summary
	} else {
		body["order"] = job.Order
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal receipt payload: %w", err)
	}
	return payload, nil
}
