package solana

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/solcard/card-order-service/internal/domain"
)

// Gate implements domain.TokenGate for one configured SPL token mint. A
// wallet with no token accounts holds zero and fails the gate without error.
type Gate struct {
	client   *Client
	mint     string
	required float64
}

func NewGate(client *Client, mint string, required float64) *Gate {
	return &Gate{client: client, mint: mint, required: required}
}

func (g *Gate) CheckBalance(ctx context.Context, wallet string) (*domain.TokenBalanceCheck, error) {
	accounts, err := g.client.getTokenAccountsByOwner(ctx, wallet, g.mint)
	if err != nil {
		return nil, err
	}

	balance := decimal.Zero
	for _, account := range accounts {
		amount := account.Account.Data.Parsed.Info.TokenAmount
		raw, err := decimal.NewFromString(amount.Amount)
		if err != nil {
			continue
		}
		balance = balance.Add(raw.Div(decimal.New(1, amount.Decimals)))
	}

	held, _ := balance.Float64()
	return &domain.TokenBalanceCheck{
		Balance:  held,
		Required: g.required,
		Passes:   held >= g.required,
	}, nil
}
