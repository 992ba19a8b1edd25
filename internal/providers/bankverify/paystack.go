package bankverify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

type Config struct {
	BaseURL string
	Secret  string
	Timeout time.Duration
}

// PaystackProvider resolves accounts against the Paystack bank resolve API.
type PaystackProvider struct {
	cfg    Config
	client *http.Client
}

func NewPaystack(cfg Config) *PaystackProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &PaystackProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

type resolveResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AccountNumber string `json:"account_number"`
		AccountName   string `json:"account_name"`
	} `json:"data"`
}

func (p *PaystackProvider) Resolve(ctx context.Context, accountNumber, bankCode string) (string, error) {
	endpoint := fmt.Sprintf("%s/bank/resolve?account_number=%s&bank_code=%s",
		p.cfg.BaseURL,
		url.QueryEscape(accountNumber),
		url.QueryEscape(bankCode),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.Secret)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("resolve account: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", ErrUnresolvable
	}

	var body resolveResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode resolve response: %w", err)
	}
	if !body.Status || body.Data.AccountName == "" {
		return "", ErrUnresolvable
	}

	return body.Data.AccountName, nil
}
