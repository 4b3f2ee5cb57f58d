// Package snapshot implements the two daily batch jobs: the crypto portfolio
// snapshot and the unified net worth snapshot. Each run loads its inputs in
// batched queries, makes at most one external price/rate call, and then
// processes users with isolated failures, so one bad user never aborts the
// rest of the batch.
package snapshot

import "github.com/shopspring/decimal"

// UserFailure records one user whose snapshot could not be written.
type UserFailure struct {
	UserId string `json:"userId"`
	Error  string `json:"error"`
}

// PortfolioSummary reports the outcome of one portfolio snapshot run.
type PortfolioSummary struct {
	Date             string          `json:"date"`
	UsersProcessed   int             `json:"usersProcessed"`
	Succeeded        int             `json:"succeeded"`
	Failed           int             `json:"failed"`
	SkippedZeroValue int             `json:"skippedZeroValue"`
	TotalValueUsd    decimal.Decimal `json:"totalValueUsd"`
	MissingPrices    []string        `json:"missingPrices,omitempty"`
	Failures         []UserFailure   `json:"failures,omitempty"`
}

// NetWorthSummary reports the outcome of one net worth snapshot run.
type NetWorthSummary struct {
	Date           string          `json:"date"`
	UsersProcessed int             `json:"usersProcessed"`
	Succeeded      int             `json:"succeeded"`
	Failed         int             `json:"failed"`
	ExchangeRate   decimal.Decimal `json:"exchangeRate"`
	RateTier       string          `json:"rateTier"`
	Failures       []UserFailure   `json:"failures,omitempty"`
}
