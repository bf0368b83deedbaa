package zeroid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/solcard/card-order-service/internal/domain"
)

// Client talks to the ZeroID B2B card-issuing API. Rejections from the
// platform are semantic errors; network failures are transient. Issuing
// calls are irreversible once the platform acknowledges them.
type Client struct {
	baseURL      string
	apiKey       string
	commissionID string
	currencyID   string
	httpClient   *http.Client
}

func NewClient(baseURL, apiKey, commissionID, currencyID string) *Client {
	return &Client{
		baseURL:      baseURL,
		apiKey:       apiKey,
		commissionID: commissionID,
		currencyID:   currencyID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type apiError struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (e *apiError) text() string {
	switch {
	case e.Detail != "":
		return e.Detail
	case e.Message != "":
		return e.Message
	case e.Error != "":
		return e.Error
	}
	return "unknown issuing error"
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Transient("zeroid "+path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Transient("zeroid "+path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode >= 500 {
			return domain.Transient("zeroid "+path, fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody)))
		}
		var apiErr apiError
		if err := json.Unmarshal(respBody, &apiErr); err != nil {
			return fmt.Errorf("zeroid %s: status %d: %s", path, resp.StatusCode, string(respBody))
		}
		return fmt.Errorf("zeroid %s: %s", path, apiErr.text())
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("zeroid %s: malformed response: %w", path, err)
		}
	}
	return nil
}

type createCardRequest struct {
	Title            string `json:"title"`
	Email            string `json:"email"`
	PhoneNumber      string `json:"phone_number"`
	CardCommissionID string `json:"card_commission_id"`
	CurrencyID       string `json:"currency_id"`
}

type createCardResponse struct {
	CardID  string `json:"card_id"`
	Message string `json:"message"`
}

func (c *Client) CreateCard(ctx context.Context, req *domain.CreateCardRequest) (string, error) {
	var resp createCardResponse
	err := c.do(ctx, http.MethodPost, "/cards", createCardRequest{
		Title:            req.Title,
		Email:            req.Email,
		PhoneNumber:      req.PhoneNumber,
		CardCommissionID: c.commissionID,
		CurrencyID:       c.currencyID,
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.CardID == "" {
		return "", fmt.Errorf("zeroid /cards: response carries no card_id")
	}
	return resp.CardID, nil
}

type topUpRequest struct {
	Amount     float64 `json:"amount"`
	CurrencyID string  `json:"currency_id"`
}

type topUpResponse struct {
	ReferenceID string  `json:"reference_id"`
	FinalAmount float64 `json:"final_amount"`
	Message     string  `json:"message"`
}

// TopUpCard returns the net amount the platform credited after its fee.
func (c *Client) TopUpCard(ctx context.Context, cardID string, amount float64) (float64, error) {
	var resp topUpResponse
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/cards/%s/topup", cardID), topUpRequest{
		Amount:     amount,
		CurrencyID: c.currencyID,
	}, &resp)
	if err != nil {
		return 0, err
	}
	if resp.FinalAmount > 0 {
		return resp.FinalAmount, nil
	}
	return amount, nil
}

func (c *Client) FreezeCard(ctx context.Context, cardID string) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/cards/%s/freeze", cardID), nil, nil)
}

func (c *Client) UnfreezeCard(ctx context.Context, cardID string) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/cards/%s/unfreeze", cardID), nil, nil)
}

type cardResponse struct {
	Data *issuedCard `json:"data"`
	issuedCard
}

type issuedCard struct {
	CardID   string  `json:"card_id"`
	Title    string  `json:"title"`
	Status   string  `json:"status"`
	Balance  float64 `json:"balance"`
	LastFour string  `json:"last_four"`
}

func (c *Client) GetCard(ctx context.Context, cardID string) (*domain.IssuedCard, error) {
	var resp cardResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/cards/%s", cardID), nil, &resp); err != nil {
		return nil, err
	}
	card := resp.issuedCard
	if resp.Data != nil {
		card = *resp.Data
	}
	return &domain.IssuedCard{
		CardID:   card.CardID,
		Title:    card.Title,
		Status:   card.Status,
		Balance:  card.Balance,
		LastFour: card.LastFour,
	}, nil
}
