package diag

import (
	"encoding/binary"
	"fmt"

	"github.com/apmismail/switchtec-user/mrpc"
)

// Pattern selects a PRBS test pattern for the generator and monitor.
type Pattern int

const (
	PatternDisabled Pattern = iota
	PatternPRBS7
	PatternPRBS11
	PatternPRBS23
	PatternPRBS31
	PatternPRBS9
	PatternPRBS15
)

func (p Pattern) String() string {
	switch p {
	case PatternDisabled:
		return "DISABLED"
	case PatternPRBS7:
		return "PRBS7"
	case PatternPRBS11:
		return "PRBS11"
	case PatternPRBS23:
		return "PRBS23"
	case PatternPRBS31:
		return "PRBS31"
	case PatternPRBS9:
		return "PRBS9"
	case PatternPRBS15:
		return "PRBS15"
	default:
		return "UNKNOWN"
	}
}

// Pattern generator and monitor sub-commands.
const (
	patSubSetGen = 0x01
	patSubGetGen = 0x02
	patSubSetMon = 0x03
	patSubGetMon = 0x04
	patSubInject = 0x05
)

// Pattern wire sizes. The monitor response carries its error counter as a
// 32-bit lo/hi pair after the one-byte fields.
const (
	patInLen     = 4  // sub(1) port(1) pattern(1) lane(1)
	patInjectLen = 8  // sub(1) port(1) rsvd(2) err_cnt(4)
	patGenOutLen = 4  // port(1) pattern(1) rsvd(2)
	patMonOutLen = 12 // port(1) pattern(1) lane(1) rsvd(1) err_lo(4) err_hi(4)
)

func checkPatternArgs(op string, port int, pat Pattern) error {
	if port < 0 || port > 0xff {
		return fmt.Errorf("%s: %w: port %d", op, ErrInvalidArgument, port)
	}
	if pat < PatternDisabled || pat > PatternPRBS15 {
		return fmt.Errorf("%s: %w: pattern %d", op, ErrInvalidArgument, int(pat))
	}
	return nil
}

// PatternGenSet configures the pattern generator of port. PatternDisabled
// stops generation.
func (c *Client) PatternGenSet(port int, pat Pattern) error {
	const op = "pattern gen set"
	if err := checkPatternArgs(op, port, pat); err != nil {
		return err
	}
	req := make([]byte, patInLen)
	req[0] = patSubSetGen
	req[1] = byte(port)
	req[2] = byte(pat)
	return c.run(op, mrpc.PatGen, req, nil)
}

// PatternGenGet reports the pattern currently generated on port.
func (c *Client) PatternGenGet(port int) (Pattern, error) {
	const op = "pattern gen get"
	if err := checkPatternArgs(op, port, PatternDisabled); err != nil {
		return 0, err
	}
	req := make([]byte, patInLen)
	req[0] = patSubGetGen
	req[1] = byte(port)
	resp := make([]byte, patGenOutLen)
	if err := c.run(op, mrpc.PatGen, req, resp); err != nil {
		return 0, err
	}
	return Pattern(resp[1]), nil
}

// PatternMonSet configures the pattern monitor of port.
func (c *Client) PatternMonSet(port int, pat Pattern) error {
	const op = "pattern mon set"
	if err := checkPatternArgs(op, port, pat); err != nil {
		return err
	}
	req := make([]byte, patInLen)
	req[0] = patSubSetMon
	req[1] = byte(port)
	req[2] = byte(pat)
	return c.run(op, mrpc.PatGen, req, nil)
}

// PatternMonGet reports the monitored pattern on one lane of port and the
// accumulated error count for that lane.
func (c *Client) PatternMonGet(port, lane int) (Pattern, uint64, error) {
	const op = "pattern mon get"
	if err := checkPatternArgs(op, port, PatternDisabled); err != nil {
		return 0, 0, err
	}
	if lane < 0 || lane > 0xff {
		return 0, 0, fmt.Errorf("%s: %w: lane %d", op, ErrInvalidArgument, lane)
	}
	req := make([]byte, patInLen)
	req[0] = patSubGetMon
	req[1] = byte(port)
	req[3] = byte(lane)
	resp := make([]byte, patMonOutLen)
	if err := c.run(op, mrpc.PatGen, req, resp); err != nil {
		return 0, 0, err
	}
	errCnt := hiLoUint64(binary.LittleEndian.Uint32(resp[8:]), binary.LittleEndian.Uint32(resp[4:]))
	return Pattern(resp[1]), errCnt, nil
}

// PatternInject injects errCnt bit errors into the pattern generated on
// port, for exercising the far-end monitor.
func (c *Client) PatternInject(port int, errCnt uint32) error {
	const op = "pattern inject"
	if port < 0 || port > 0xff {
		return fmt.Errorf("%s: %w: port %d", op, ErrInvalidArgument, port)
	}
	req := make([]byte, patInjectLen)
	req[0] = patSubInject
	req[1] = byte(port)
	binary.LittleEndian.PutUint32(req[4:], errCnt)
	return c.run(op, mrpc.PatGen, req, nil)
}
