package solana

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

// Client is a thin JSON-RPC client against a Solana RPC endpoint (Helius or
// any standard node). Network and protocol failures surface as transient
// errors; a missing transaction is a semantic result, not a failure.
type Client struct {
	rpcURL     string
	httpClient *http.Client
}

func NewClient(rpcURL string) *Client {
	return &Client{
		rpcURL: rpcURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *Client) call(ctx context.Context, method string, params []interface{}, out interface{}) error {
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal rpc request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Transient(method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Transient(method, err)
	}
	if resp.StatusCode != http.StatusOK {
		return domain.Transient(method, fmt.Errorf("rpc returned status %d: %s", resp.StatusCode, string(body)))
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return domain.Transient(method, fmt.Errorf("malformed rpc response: %w", err))
	}
	if rpcResp.Error != nil {
		return domain.Transient(method, fmt.Errorf("rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message))
	}

	if out != nil {
		if err := json.Unmarshal(rpcResp.Result, out); err != nil {
			return domain.Transient(method, fmt.Errorf("malformed rpc result: %w", err))
		}
	}
	return nil
}

type signatureInfo struct {
	Signature          string          `json:"signature"`
	Slot               uint64          `json:"slot"`
	BlockTime          *int64          `json:"blockTime"`
	Err                json.RawMessage `json:"err"`
	ConfirmationStatus string          `json:"confirmationStatus"`
}

func (c *Client) getSignaturesForAddress(ctx context.Context, address string, limit int) ([]signatureInfo, error) {
	var signatures []signatureInfo
	err := c.call(ctx, "getSignaturesForAddress", []interface{}{
		address,
		map[string]interface{}{"limit": limit},
	}, &signatures)
	if err != nil {
		return nil, err
	}
	return signatures, nil
}

type accountKey struct {
	Pubkey string `json:"pubkey"`
}

type parsedTransaction struct {
	BlockTime *int64 `json:"blockTime"`
	Meta      *struct {
		Err          json.RawMessage `json:"err"`
		PreBalances  []int64         `json:"preBalances"`
		PostBalances []int64         `json:"postBalances"`
	} `json:"meta"`
	Transaction struct {
		Message struct {
			AccountKeys []accountKey `json:"accountKeys"`
		} `json:"message"`
	} `json:"transaction"`
}

// getTransaction returns nil (no error) when the chain does not know the
// signature.
func (c *Client) getTransaction(ctx context.Context, signature string) (*parsedTransaction, error) {
	var raw json.RawMessage
	err := c.call(ctx, "getTransaction", []interface{}{
		signature,
		map[string]interface{}{
			"encoding":                       "jsonParsed",
			"maxSupportedTransactionVersion": 0,
		},
	}, &raw)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var tx parsedTransaction
	if err := json.Unmarshal(raw, &tx); err != nil {
		return nil, domain.Transient("getTransaction", fmt.Errorf("malformed transaction: %w", err))
	}
	return &tx, nil
}

type tokenAccount struct {
	Account struct {
		Data struct {
			Parsed struct {
				Info struct {
					TokenAmount struct {
						Amount   string `json:"amount"`
						Decimals int32  `json:"decimals"`
					} `json:"tokenAmount"`
				} `json:"info"`
			} `json:"parsed"`
		} `json:"data"`
	} `json:"account"`
}

type tokenAccountsResult struct {
	Value []tokenAccount `json:"value"`
}

func (c *Client) getTokenAccountsByOwner(ctx context.Context, owner, mint string) ([]tokenAccount, error) {
	var result tokenAccountsResult
	err := c.call(ctx, "getTokenAccountsByOwner", []interface{}{
		owner,
		map[string]interface{}{"mint": mint},
		map[string]interface{}{"encoding": "jsonParsed"},
	}, &result)
	if err != nil {
		return nil, err
	}
	return result.Value, nil
}
