package detect

import (
	"fmt"
)

// ConfigError reports an invalid option value at construction. It is fatal:
// no detection runs until the configuration is fixed.
type ConfigError struct {
	Option string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration option %q: %s", e.Option, e.Reason)
}

// InputError reports a structurally malformed input collection (wrong shape
// entirely). It aborts the whole call. Individually malformed transactions
// inside an otherwise valid collection are skipped instead.
type InputError struct {
	Reason string
	Err    error
}

func (e *InputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid transaction input: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid transaction input: %s", e.Reason)
}

func (e *InputError) Unwrap() error {
	return e.Err
}
