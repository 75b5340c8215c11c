// Package diag drives the diagnostic command set of a Switchtec PCIe
// switch: eye-diagram capture, cross-hair boundary search, internal
// loopback, pattern generation, receiver state dumps, transmitter
// equalization dumps, LTSSM transition logs, reference clock control and
// AER event generation.
//
// All operations run over an injected Device, which performs one MRPC
// request/response exchange at a time. Response layouts differ between
// Gen4 and Gen5 hardware; the Client selects the right codec from the
// device's reported generation. Operations are synchronous and may block
// in fixed settle delays or busy polling; the device handle must not be
// shared with another writer while a multi-step operation is in flight.
//
//	client := diag.New(dev)
//	table, err := client.PortEqTxTable(port, diag.LinkCurrent)
package diag

import (
	"fmt"
	"time"

	"k8s.io/klog/v2"

	"github.com/apmismail/switchtec-user/mrpc"
)

// Generation identifies the hardware family of an attached switch.
type Generation int

const (
	GenUnknown Generation = iota
	Gen3
	Gen4
	Gen5
)

func (g Generation) String() string {
	switch g {
	case Gen3:
		return "Gen3"
	case Gen4:
		return "Gen4"
	case Gen5:
		return "Gen5"
	default:
		return "Unknown"
	}
}

// Device is one open management endpoint of a switch. Implementations wrap
// the platform transport (character device, I2C adapter, ethernet gateway)
// and are expected to serialize access themselves; the diag layer issues
// strictly sequential exchanges and performs no locking of its own.
type Device interface {
	// Command performs one MRPC exchange: req is the complete request
	// payload for cmd, and resp (which may be nil) is filled with exactly
	// len(resp) response bytes on success. A non-nil error reports a
	// transport failure or a non-zero completion status from the firmware.
	Command(cmd mrpc.ID, req []byte, resp []byte) error

	// Generation reports the hardware generation of the attached switch.
	Generation() Generation
}

// GenTransfers maps a hardware generation to its transfer rate in GT/s.
// Index 0 is unused so that generation N indexes directly.
var GenTransfers = [...]float32{0, 2.5, 5, 8, 16, 32, 64}

// Default pacing for the asynchronous eye-capture operations.
const (
	// DefaultSettleDelay is slept after an eye start or cancel so the
	// capture hardware can (re)initialize before the next command.
	DefaultSettleDelay = 200 * time.Millisecond

	// DefaultBusyInterval is the backoff between eye fetch retries while
	// the capture is still running.
	DefaultBusyInterval = 5 * time.Millisecond
)

// Client issues diagnostic commands to one device.
type Client struct {
	dev Device

	settleDelay  time.Duration
	busyInterval time.Duration

	// Test seams. sleep paces the polling controller; describe resolves
	// command descriptors for the permission table.
	sleep    func(time.Duration)
	describe func(mrpc.ID) (mrpc.Info, bool)
}

// New returns a Client driving dev.
func New(dev Device, opts ...Option) *Client {
	c := &Client{
		dev:          dev,
		settleDelay:  DefaultSettleDelay,
		busyInterval: DefaultBusyInterval,
		sleep:        time.Sleep,
		describe:     mrpc.Describe,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// run performs one exchange and tags any failure with the operation name.
// A Device failure that carries no failure class of its own counts as a
// protocol error.
func (c *Client) run(op string, cmd mrpc.ID, req, resp []byte) error {
	if err := c.dev.Command(cmd, req, resp); err != nil {
		if !classified(err) {
			err = fmt.Errorf("%w: %w", ErrProtocol, err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	klog.V(2).Infof("%s: cmd %#x sent %d B, received %d B", op, uint32(cmd), len(req), len(resp))
	return nil
}

// genCodec is the per-generation strategy for features whose wire layout
// differs between Gen4 and Gen5.
type genCodec interface {
	portEqTxCoeff(c *Client, port int, end EqEnd, link Link) (*PortEqCoeff, error)
	portEqTxTable(c *Client, port int, link Link) (*PortEqTable, error)
	portEqTxFSLF(c *Client, port, lane int, end EqEnd, link Link) (*PortEqFSLF, error)
	ltssmLog(c *Client, port, count int) ([]LtssmLogEntry, error)
}

// codec selects the generation strategy for one dispatched call.
func (c *Client) codec(op string) (genCodec, error) {
	gen := c.dev.Generation()
	switch gen {
	case Gen4:
		return gen4Codec{}, nil
	case Gen5:
		return gen5Codec{}, nil
	}
	return nil, fmt.Errorf("%s: %w: unsupported hardware generation %s", op, ErrInvalidArgument, gen)
}
