// Package eftpos integrates the supported card terminals behind one
// interface. The provider is chosen once from the register configuration;
// the payment flow never branches on the vendor again.
package eftpos

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/tabin-ltd/kiosk/internal/domain"
)

var (
	ErrUnknownProvider    = errors.New("unknown eftpos provider")
	ErrCancelNotSupported = errors.New("provider does not support cancelling a transaction")
)

// Result is the normalized end state of a card transaction. Every vendor
// specific outcome collapses into one of these two.
type Result string

const (
	ResultSuccess Result = "SUCCESS"
	ResultFail    Result = "FAIL"
)

// TransactionOutcome is what the payment flow acts on: success carries the
// customer receipt when the vendor supplies one, failure carries a
// displayable message.
type TransactionOutcome struct {
	Result  Result
	Message string
	Receipt string
}

// Progress is a transient event raised while a transaction is in flight.
// Delayed fires at most once per attempt when the terminal takes unusually
// long; Message is display text straight from the terminal.
type Progress struct {
	Delayed bool
	Message string
}

type ProgressFunc func(Progress)

// Terminal is one configured card terminal. CreateTransaction starts a
// purchase for the given amount and returns a vendor reference;
// PollForOutcome blocks until the transaction reaches a terminal state or ctx
// is cancelled.
type Terminal interface {
	CreateTransaction(ctx context.Context, amountCents int, reference string) (string, error)
	PollForOutcome(ctx context.Context, ref string, onProgress ProgressFunc) (*TransactionOutcome, error)
}

// Canceller is implemented by terminals that can force-cancel an in-flight
// transaction. Only tyro supports this.
type Canceller interface {
	CancelTransaction(ctx context.Context, ref string) error
}

// ProviderFor picks the terminal implementation for a register's configured
// provider.
func ProviderFor(register *domain.Register, httpClient *http.Client) (Terminal, error) {
	switch register.EftposProvider {
	case domain.EftposProviderSmartpay:
		return NewSmartpay(httpClient), nil
	case domain.EftposProviderVerifone:
		return NewVerifone(httpClient, register.EftposIPAddress, register.EftposPort), nil
	case domain.EftposProviderWindcave:
		return NewWindcave(httpClient, register.WindcaveStationID), nil
	case domain.EftposProviderTyro:
		return NewTyro(httpClient, register.TyroMerchantID), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, register.EftposProvider)
}

// breakerClient is the shared HTTP transport: every vendor call goes through
// a circuit breaker so a dead terminal fails fast instead of stacking up
// blocked checkouts.
type breakerClient struct {
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
}

func newBreakerClient(name string, client *http.Client) *breakerClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &breakerClient{
		client: client,
		breaker: gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name:    name,
			Timeout: 15 * time.Second,
		}),
	}
}

func (b *breakerClient) do(ctx context.Context, method, url string, body []byte, header http.Header) ([]byte, error) {
	return b.breaker.Execute(func() ([]byte, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		for k, vals := range header {
			for _, v := range vals {
				req.Header.Add(k, v)
			}
		}

		resp, err := b.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("terminal request failed: %w", err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read terminal response: %w", err)
		}
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("terminal returned status %d", resp.StatusCode)
		}
		return data, nil
	})
}
