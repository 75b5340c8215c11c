package diag

import (
	"encoding/binary"
	"fmt"

	"github.com/apmismail/switchtec-user/mrpc"
)

// Reference clock sub-commands.
const (
	refclkSubEnable  = 1
	refclkSubDisable = 2
)

// RefclkCtl enables or disables the reference clock output of one stack.
// Request: sub(1) stack(1) rsvd(2); no response payload.
func (c *Client) RefclkCtl(stack int, enable bool) error {
	const op = "refclk ctl"
	if stack < 0 || stack > 0xff {
		return fmt.Errorf("%s: %w: stack %d", op, ErrInvalidArgument, stack)
	}
	sub := byte(refclkSubDisable)
	if enable {
		sub = refclkSubEnable
	}
	req := []byte{sub, byte(stack), 0, 0}
	return c.run(op, mrpc.RefclkS, req, nil)
}

// AerTrigger selects the error event class an injected AER event reports.
// The trigger doubles as the command's sub-command byte.
type AerTrigger int

const (
	AerTriggerCorrectable AerTrigger = iota + 1
	AerTriggerNonFatal
	AerTriggerFatal
)

func (t AerTrigger) String() string {
	switch t {
	case AerTriggerCorrectable:
		return "CORRECTABLE"
	case AerTriggerNonFatal:
		return "NON_FATAL"
	case AerTriggerFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// AER event generation request: sub(1) port(1) rsvd(2) err_mask(u32)
// hdr_log(4xu32) = 24 bytes. The response is a single status word with no
// further payload to decode.
const (
	aerGenInLen  = 24
	aerGenOutLen = 4
)

// AerEventGen injects an AER error event on port. bit indexes the single
// error mask bit to raise; the TLP header log accompanying the event is
// sent zeroed.
func (c *Client) AerEventGen(port, bit int, trigger AerTrigger) error {
	const op = "aer event gen"
	if port < 0 || port > 0xff {
		return fmt.Errorf("%s: %w: port %d", op, ErrInvalidArgument, port)
	}
	if bit < 0 || bit > 31 {
		return fmt.Errorf("%s: %w: error bit %d", op, ErrInvalidArgument, bit)
	}
	if trigger < AerTriggerCorrectable || trigger > AerTriggerFatal {
		return fmt.Errorf("%s: %w: trigger event %d", op, ErrInvalidArgument, int(trigger))
	}
	req := make([]byte, aerGenInLen)
	req[0] = byte(trigger)
	req[1] = byte(port)
	binary.LittleEndian.PutUint32(req[4:8], 1<<uint(bit))
	resp := make([]byte, aerGenOutLen)
	return c.run(op, mrpc.AERGen, req, resp)
}
