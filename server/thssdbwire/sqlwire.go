package thssdbwire

import "github.com/Chinwer/ThssDB/internal/sql/executor"

// ExecuteRequest carries one SQL script (any number of statements).
type ExecuteRequest struct {
	ID  uint64 `json:"id"`
	SQL string `json:"sql"`
}

// ExecuteResponse answers the request with the same ID. When a statement
// fails, Results holds the statements completed before it and Error is set.
type ExecuteResponse struct {
	ID      uint64            `json:"id"`
	Results []executor.Result `json:"results,omitempty"`
	Error   string            `json:"error,omitempty"`
}
