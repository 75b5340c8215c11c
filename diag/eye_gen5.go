package diag

import (
	"encoding/binary"
	"fmt"

	"github.com/apmismail/switchtec-user/mrpc"
)

// Analyzer eye capture sub-commands. This family is Gen5 only: the capture
// runs on the SerDes analyzer block instead of the Gen4 observation engine
// and reports bit error rates per voltage bin and phase step.
const (
	gen5EyeSubRun    = 0x01
	gen5EyeSubStatus = 0x02
	gen5EyeSubRead   = 0x03
)

// Analyzer eye wire sizes.
const (
	gen5EyeRunLen     = 20 // sub(1) depth(1) timeout_disable(1) rsvd(1) mask(16)
	gen5EyeReadLen    = 4  // sub(1) lane(1) bin(1) rsvd(1)
	gen5EyeMaxPhases  = 60
	gen5EyeReadOutLen = 8 + 8*gen5EyeMaxPhases
	gen5EyeMaxBin     = 63
)

// Gen5EyeRun starts an analyzer eye capture over the masked lanes.
// captureDepth selects how many samples accumulate per measurement point.
// The firmware-side capture timeout is disabled; progress is observed with
// Gen5EyeStatus and results collected per bin with Gen5EyeRead. The settle
// delay after the exchange follows the same discipline as EyeStart.
func (c *Client) Gen5EyeRun(laneMask [4]uint32, captureDepth uint8) error {
	const op = "gen5 eye run"
	if gen := c.dev.Generation(); gen != Gen5 {
		return fmt.Errorf("%s: %w: requires Gen5 hardware, device is %s", op, ErrInvalidArgument, gen)
	}
	req := make([]byte, gen5EyeRunLen)
	req[0] = gen5EyeSubRun
	req[1] = captureDepth
	req[2] = 1 // timeout disable
	for i, m := range laneMask {
		binary.LittleEndian.PutUint32(req[4+4*i:], m)
	}
	resp := make([]byte, 4)

	err := c.run(op, mrpc.Gen5EyeCapture, req, resp)
	c.sleep(c.settleDelay)
	return err
}

// Gen5EyeStatus reports the analyzer state word for a running capture.
// Zero means all requested lanes have completed.
func (c *Client) Gen5EyeStatus() (uint32, error) {
	req := make([]byte, 4)
	req[0] = gen5EyeSubStatus
	resp := make([]byte, 4)
	if err := c.run("gen5 eye status", mrpc.Gen5EyeCapture, req, resp); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(resp), nil
}

// Gen5EyeRead returns the bit error rates measured for one voltage bin of
// one lane, one value per phase step. Bins index the vertical axis 0..63;
// the phase count is 30 or 60 depending on the capture depth.
func (c *Client) Gen5EyeRead(lane, bin int) ([]float64, error) {
	const op = "gen5 eye read"
	if lane < 0 || lane > 0xff {
		return nil, fmt.Errorf("%s: %w: lane %d", op, ErrInvalidArgument, lane)
	}
	if bin < 0 || bin > gen5EyeMaxBin {
		return nil, fmt.Errorf("%s: %w: bin %d", op, ErrInvalidArgument, bin)
	}

	req := make([]byte, gen5EyeReadLen)
	req[0] = gen5EyeSubRead
	req[1] = byte(lane)
	req[2] = byte(bin)
	resp := make([]byte, gen5EyeReadOutLen)
	if err := c.run(op, mrpc.Gen5EyeCapture, req, resp); err != nil {
		return nil, err
	}

	n := int(binary.LittleEndian.Uint32(resp))
	if n > gen5EyeMaxPhases {
		n = gen5EyeMaxPhases
	}
	ber := make([]float64, n)
	for i := range ber {
		ber[i] = berValue(binary.LittleEndian.Uint64(resp[8+8*i:]))
	}
	return ber, nil
}
