package core

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Every typed error below unwraps to one of these so
// callers can branch with errors.Is.
var (
	ErrConfiguration     = errors.New("configuration error")
	ErrInvalidSignal     = errors.New("invalid signal")
	ErrUnknownVariant    = errors.New("unknown variant")
	ErrPeerGroupMismatch = errors.New("peer group mismatch")
)

// #region config-error
// ConfigError reports a missing or unusable configuration value.
// Raised at construction time.
type ConfigError struct {
	Variant string
	Key     string
	Reason  string
}

func (e *ConfigError) Error() string {
	switch {
	case e.Variant != "" && e.Key != "":
		return fmt.Sprintf("configuration error: %s: %q: %s", e.Variant, e.Key, e.Reason)
	case e.Variant != "":
		return fmt.Sprintf("configuration error: %s: %s", e.Variant, e.Reason)
	default:
		return fmt.Sprintf("configuration error: %s", e.Reason)
	}
}

func (e *ConfigError) Unwrap() error { return ErrConfiguration }

// #endregion config-error

// #region invalid-signal-error
// InvalidSignalError reports a non-finite received signal.
type InvalidSignalError struct {
	Value float64
	T     int
}

func (e *InvalidSignalError) Error() string {
	return fmt.Sprintf("invalid signal at t=%d: %v is not finite", e.T, e.Value)
}

func (e *InvalidSignalError) Unwrap() error { return ErrInvalidSignal }

// #endregion invalid-signal-error

// #region unknown-variant-error
// UnknownVariantError reports an unrecognized built-in variant name.
type UnknownVariantError struct {
	Role  string
	Name  string
	Valid []string
}

func (e *UnknownVariantError) Error() string {
	return fmt.Sprintf("unknown %s variant %q (valid: %s)", e.Role, e.Name, strings.Join(e.Valid, ", "))
}

func (e *UnknownVariantError) Unwrap() error { return ErrUnknownVariant }

// #endregion unknown-variant-error

// #region peer-group-error
// PeerGroupError reports an empty or inconsistent peer group.
type PeerGroupError struct {
	Reason string
	Size   int
}

func (e *PeerGroupError) Error() string {
	return fmt.Sprintf("peer group mismatch (size %d): %s", e.Size, e.Reason)
}

func (e *PeerGroupError) Unwrap() error { return ErrPeerGroupMismatch }

// #endregion peer-group-error
