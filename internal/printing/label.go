package printing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/tabin-ltd/kiosk/internal/domain"
)

const labelServerPort = 18080

var (
	ErrNoPrinters     = errors.New("label server reports no printers")
	ErrPrintFailed    = errors.New("label print failed")
	ErrDuplicatedJob  = errors.New("duplicated label job")
	ErrServerUnusable = errors.New("cannot connect to label server")
)

// LabelClient talks to the local label print server. A job is POSTed to
// /WebPrintSDK/<printer> and then polled on /checkStatus until it reaches a
// terminal result.
type LabelClient struct {
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*labelResponse]

	pollInterval time.Duration
}

type labelResponse struct {
	Result     string `json:"Result"`
	RequestID  int    `json:"RequestID"`
	ResponseID string `json:"ResponseID"`
}

func NewLabelClient(client *http.Client) *LabelClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &LabelClient{
		client: client,
		breaker: gobreaker.NewCircuitBreaker[*labelResponse](gobreaker.Settings{
			Name:    "label-server",
			Timeout: 15 * time.Second,
		}),
		pollInterval: time.Second,
	}
}

func serverURL(address, printerName string) string {
	return fmt.Sprintf("http://%s:%d/WebPrintSDK/%s", address, labelServerPort, printerName)
}

// PrintLabels prints one label per product unit on the order.
func (c *LabelClient) PrintLabels(ctx context.Context, address, printerName string, order *domain.Order) error {
	url := serverURL(address, printerName)

	for _, product := range order.Products {
		for i := 0; i < product.Quantity; i++ {
			payload, err := json.Marshal(map[string]interface{}{
				"orderNumber": order.Number,
				"product":     product.Name,
			})
			if err != nil {
				return fmt.Errorf("marshal label payload: %w", err)
			}

			resp, err := c.post(ctx, url, payload)
			if err != nil {
				return err
			}

			switch resp.Result {
			case "ready", "progress":
				if err := c.waitForCompletion(ctx, url, resp); err != nil {
					return err
				}
			case "error":
				return ErrPrintFailed
			case "duplicated":
				return ErrDuplicatedJob
			default:
				return fmt.Errorf("%w: unexpected result %q", ErrPrintFailed, resp.Result)
			}
		}
	}
	return nil
}

// waitForCompletion polls /checkStatus until the job leaves the
// ready/progress states.
func (c *LabelClient) waitForCompletion(ctx context.Context, url string, last *labelResponse) error {
	for {
		inquiry, err := json.Marshal(map[string]interface{}{
			"RequestID":  last.RequestID,
			"ResponseID": last.ResponseID,
			"Timeout":    30,
		})
		if err != nil {
			return fmt.Errorf("marshal status inquiry: %w", err)
		}

		resp, err := c.post(ctx, url+"/checkStatus", inquiry)
		if err != nil {
			return err
		}

		switch resp.Result {
		case "ready", "progress":
			last = resp
		case "error":
			return ErrPrintFailed
		default:
			// The job finished printing.
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
}

func (c *LabelClient) post(ctx context.Context, url string, body []byte) (*labelResponse, error) {
	return c.breaker.Execute(func() (*labelResponse, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("build label request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrServerUnusable, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return nil, ErrNoPrinters
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: status %d", ErrServerUnusable, resp.StatusCode)
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read label response: %w", err)
		}

		var out labelResponse
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("decode label response: %w", err)
		}
		return &out, nil
	})
}
