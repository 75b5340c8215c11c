package diag

import (
	"fmt"

	"github.com/apmismail/switchtec-user/mrpc"
)

// LoopbackMode is a bit set of loopback paths on one port.
type LoopbackMode int

const (
	LoopbackRxToTx LoopbackMode = 1 << iota // receiver folded back to transmitter
	LoopbackTxToRx                          // transmitter folded back to receiver
	LoopbackLtssm                           // LTSSM-level loopback state
)

func (m LoopbackMode) String() string {
	if m == 0 {
		return "NONE"
	}
	s := ""
	for _, part := range []struct {
		bit  LoopbackMode
		name string
	}{
		{LoopbackRxToTx, "RX_TO_TX"},
		{LoopbackTxToRx, "TX_TO_RX"},
		{LoopbackLtssm, "LTSSM"},
	} {
		if m&part.bit == 0 {
			continue
		}
		if s != "" {
			s += "|"
		}
		s += part.name
	}
	return s
}

// LtssmSpeed selects the link rate used for LTSSM loopback.
type LtssmSpeed int

const (
	LtssmGen1 LtssmSpeed = iota
	LtssmGen2
	LtssmGen3
	LtssmGen4
	LtssmGen5
)

func (s LtssmSpeed) String() string {
	if s < LtssmGen1 || s > LtssmGen5 {
		return "UNKNOWN"
	}
	return fmt.Sprintf("GEN%d", int(s)+1)
}

// Internal loopback sub-commands.
const (
	loopbackSubSetInt   = 0x01
	loopbackSubGetInt   = 0x02
	loopbackSubSetLtssm = 0x03
	loopbackSubGetLtssm = 0x04
)

// Path selector byte for the internal set/get sub-commands.
const (
	loopbackPathRxToTx = 0
	loopbackPathTxToRx = 1
)

// Requests are sub(1) port(1) enable(1) path-or-speed(1); responses are
// port(1) enabled(1) path-or-speed(1) rsvd(1).
const loopbackLen = 4

const loopbackModeAll = LoopbackRxToTx | LoopbackTxToRx | LoopbackLtssm

// LoopbackSet configures the loopback paths of port in three steps: the
// RX to TX path, the TX to RX path, then the LTSSM path with its speed.
// Bits absent from enable are switched off. The first failing step aborts
// the call; earlier steps are not rolled back.
func (c *Client) LoopbackSet(port int, enable LoopbackMode, speed LtssmSpeed) error {
	const op = "loopback set"
	if port < 0 || port > 0xff {
		return fmt.Errorf("%s: %w: port %d", op, ErrInvalidArgument, port)
	}
	if enable&^loopbackModeAll != 0 {
		return fmt.Errorf("%s: %w: loopback mode %#x", op, ErrInvalidArgument, int(enable))
	}
	if speed < LtssmGen1 || speed > LtssmGen5 {
		return fmt.Errorf("%s: %w: speed %d", op, ErrInvalidArgument, int(speed))
	}

	req := make([]byte, loopbackLen)
	req[0] = loopbackSubSetInt
	req[1] = byte(port)
	req[2] = boolByte(enable&LoopbackRxToTx != 0)
	req[3] = loopbackPathRxToTx
	if err := c.run(op, mrpc.IntLoopback, req, nil); err != nil {
		return err
	}

	req[2] = boolByte(enable&LoopbackTxToRx != 0)
	req[3] = loopbackPathTxToRx
	if err := c.run(op, mrpc.IntLoopback, req, nil); err != nil {
		return err
	}

	req = make([]byte, loopbackLen)
	req[0] = loopbackSubSetLtssm
	req[1] = byte(port)
	req[2] = boolByte(enable&LoopbackLtssm != 0)
	req[3] = byte(speed)
	return c.run(op, mrpc.IntLoopback, req, nil)
}

// LoopbackGet reports which loopback paths are enabled on port and the
// configured LTSSM loopback speed. The three underlying queries run in
// order; the first failure aborts the call and nothing partial is
// returned.
func (c *Client) LoopbackGet(port int) (LoopbackMode, LtssmSpeed, error) {
	const op = "loopback get"
	if port < 0 || port > 0xff {
		return 0, 0, fmt.Errorf("%s: %w: port %d", op, ErrInvalidArgument, port)
	}

	var enabled LoopbackMode
	req := make([]byte, loopbackLen)
	resp := make([]byte, loopbackLen)

	req[0] = loopbackSubGetInt
	req[1] = byte(port)
	req[3] = loopbackPathRxToTx
	if err := c.run(op, mrpc.IntLoopback, req, resp); err != nil {
		return 0, 0, err
	}
	if resp[1] != 0 {
		enabled |= LoopbackRxToTx
	}

	req[3] = loopbackPathTxToRx
	if err := c.run(op, mrpc.IntLoopback, req, resp); err != nil {
		return 0, 0, err
	}
	if resp[1] != 0 {
		enabled |= LoopbackTxToRx
	}

	req = make([]byte, loopbackLen)
	req[0] = loopbackSubGetLtssm
	req[1] = byte(port)
	if err := c.run(op, mrpc.IntLoopback, req, resp); err != nil {
		return 0, 0, err
	}
	if resp[1] != 0 {
		enabled |= LoopbackLtssm
	}
	return enabled, LtssmSpeed(resp[2]), nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
