package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dcastano/aeroops/config"
	"github.com/dcastano/aeroops/internal/domain"
)

// ValidationResult is the activation outcome issued by the external account
// validator. Status 201 means accepted with a one-time activation code.
type ValidationResult struct {
	Status int    `json:"status"`
	Code   string `json:"code"`
}

const StatusAccepted = 201

// AccountValidator is the external collaborator that confirms new accounts.
type AccountValidator interface {
	ValidateAccount(ctx context.Context, account domain.Account) (*ValidationResult, error)
}

type HTTPValidator struct {
	url    string
	client *http.Client
}

func NewHTTPValidator(cfg config.ActivationConfig) *HTTPValidator {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &HTTPValidator{
		url:    cfg.URL,
		client: &http.Client{Timeout: timeout},
	}
}

type validateRequest struct {
	AccountID  int64  `json:"account_id"`
	Identifier string `json:"identifier"`
	Role       string `json:"role"`
}

func (v *HTTPValidator) ValidateAccount(ctx context.Context, account domain.Account) (*ValidationResult, error) {
	payload, err := json.Marshal(validateRequest{
		AccountID:  account.ID,
		Identifier: account.Identifier,
		Role:       account.Role,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call account validator: %w", err)
	}
	defer resp.Body.Close()

	var result ValidationResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode validator response: %w", err)
	}
	if result.Status == 0 {
		result.Status = resp.StatusCode
	}
	return &result, nil
}

var _ AccountValidator = (*HTTPValidator)(nil)
