package constants

import "time"

const (
	// FallbackAllow lets a record through when the run ledger is unreachable;
	// FallbackFail aborts the record instead.
	FallbackAllow = "allow"
	FallbackFail  = "fail"

	// RunLedgerKeyPrefix namespaces written-document markers in Redis.
	RunLedgerKeyPrefix = "anonrun:"

	DefaultHTTPTimeout = 30 * time.Second
	ShutdownTimeout    = 10 * time.Second

	HTTPStatusOKMin = 200
	HTTPStatusOKMax = 299
)
