package domain

import "context"

type ExchangeRateProvider interface {
	GetRate(ctx context.Context, pair string) (float64, error)
	GetName() string
	IsHealthy(ctx context.Context) bool
}
