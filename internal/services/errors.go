package services

import "errors"

// ErrOracleMismatch means the oracle re-derived different run counters than
// the claim carries. Unlike a transient provider failure this is definitive:
// the transition must not be committed.
var ErrOracleMismatch = errors.New("oracle verification failed: weather report does not match claimed runs")
