package clicache

import "errors"

// Fatal cache conditions. Misses are not errors; see [Cache.Lookup].
var (
	// ErrCorruptEntry indicates a stored timestamp or exit code could not
	// be parsed. Corruption is surfaced, never downgraded to a miss.
	ErrCorruptEntry = errors.New("corrupt cache entry")

	// ErrRetriesExhausted indicates the reader could not obtain a
	// consistent set of open entry files within the retry limit. This
	// signals pathological contention or filesystem malfunction, not a
	// normal race.
	ErrRetriesExhausted = errors.New("cache read retries exhausted")
)

var (
	errEmptyRoot      = errors.New("cache root cannot be empty")
	errNegativeRetry  = errors.New("max retries must be positive")
	errEmptyCommand   = errors.New("command is empty")
	errEntryVanished  = errors.New("cache entry vanished after write")
	errEmptyLinkValue = errors.New("current link has an empty target")
)
