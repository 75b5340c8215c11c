package diag

import (
	"time"

	"github.com/apmismail/switchtec-user/mrpc"
)

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithSettleDelay sets the delay slept after an eye start or cancel.
// Default is DefaultSettleDelay.
func WithSettleDelay(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.settleDelay = d
		}
	}
}

// WithBusyInterval sets the backoff between eye fetch retries while the
// capture hardware reports busy. Default is DefaultBusyInterval.
func WithBusyInterval(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.busyInterval = d
		}
	}
}

// WithCommandInfo replaces the command descriptor lookup used when decoding
// the permission table. Default is mrpc.Describe. Useful for firmware
// builds carrying vendor command sets.
func WithCommandInfo(fn func(mrpc.ID) (mrpc.Info, bool)) Option {
	return func(c *Client) {
		if fn != nil {
			c.describe = fn
		}
	}
}
