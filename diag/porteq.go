package diag

import (
	"fmt"

	"k8s.io/klog/v2"
)

// EqEnd selects which end of the link an equalization dump reads.
type EqEnd int

const (
	EqLocal  EqEnd = iota // this switch's transmitter
	EqFarEnd              // the link partner's transmitter
)

func (e EqEnd) String() string {
	switch e {
	case EqLocal:
		return "LOCAL"
	case EqFarEnd:
		return "FAR_END"
	default:
		return "UNKNOWN"
	}
}

// Equalization geometry limits, shared by both generations.
const (
	eqMaxLanes = 16
	eqMaxSteps = 126
)

// EqCursor is one lane's transmitter cursor pair.
type EqCursor struct {
	Pre  uint8
	Post uint8
}

// PortEqCoeff is the per-lane transmitter coefficient dump of one port.
type PortEqCoeff struct {
	LaneCnt int
	Cursors []EqCursor // one per lane, len == LaneCnt
}

// PortEqTableStep is one equalization step of the link training table.
type PortEqTableStep struct {
	PreCursor    uint8
	PostCursor   uint8
	FOM          uint8 // figure of merit; Gen5 hardware does not report it
	PreCursorUp  uint8 // Gen5 hardware does not report it
	PostCursorUp uint8 // Gen5 hardware does not report it
	ErrorStatus  uint8
	ActiveStatus uint8
	Speed        uint8
}

// PortEqTable is the far-end equalization request table of one port.
type PortEqTable struct {
	Lane    int
	StepCnt int
	Steps   []PortEqTableStep // one per step, len == StepCnt
}

// PortEqFSLF is the full-swing / low-frequency pair of one lane.
type PortEqFSLF struct {
	FS uint8
	LF uint8
}

// Gen4 equalization sub-commands for the current link-up snapshot.
// Previous snapshots ride on the extended receiver dump command with the
// extDumpSub constants.
const (
	eqSubCoeffLocal = 0x01
	eqSubCoeffFar   = 0x02
	eqSubTableFar   = 0x03
	eqSubFSLFLocal  = 0x04
	eqSubFSLFFar    = 0x05
)

// Operation selector byte of the coefficient dump requests.
const eqOpPerPort = 0

func checkEqArgs(op string, port int, end EqEnd, link Link) error {
	if port < 0 || port > 0xff {
		return fmt.Errorf("%s: %w: port %d", op, ErrInvalidArgument, port)
	}
	if end != EqLocal && end != EqFarEnd {
		return fmt.Errorf("%s: %w: link end %d", op, ErrInvalidArgument, int(end))
	}
	if link != LinkCurrent && link != LinkPrevious {
		return fmt.Errorf("%s: %w: link %d", op, ErrInvalidArgument, int(link))
	}
	return nil
}

// PortEqTxCoeff dumps the per-lane transmitter coefficients of port for
// the selected link end and snapshot. The wire command and response
// layout follow the hardware generation.
func (c *Client) PortEqTxCoeff(port int, end EqEnd, link Link) (*PortEqCoeff, error) {
	const op = "port eq coeff"
	if err := checkEqArgs(op, port, end, link); err != nil {
		return nil, err
	}
	codec, err := c.codec(op)
	if err != nil {
		return nil, err
	}
	klog.V(1).Infof("%s: port %d end %s link %s on %s", op, port, end, link, c.dev.Generation())
	return codec.portEqTxCoeff(c, port, end, link)
}

// PortEqTxTable dumps the far-end equalization request table of port for
// the selected snapshot.
func (c *Client) PortEqTxTable(port int, link Link) (*PortEqTable, error) {
	const op = "port eq table"
	if err := checkEqArgs(op, port, EqFarEnd, link); err != nil {
		return nil, err
	}
	codec, err := c.codec(op)
	if err != nil {
		return nil, err
	}
	klog.V(1).Infof("%s: port %d link %s on %s", op, port, link, c.dev.Generation())
	return codec.portEqTxTable(c, port, link)
}

// PortEqTxFSLF dumps the full-swing and low-frequency values of one lane
// for the selected link end and snapshot.
func (c *Client) PortEqTxFSLF(port, lane int, end EqEnd, link Link) (*PortEqFSLF, error) {
	const op = "port eq fs/lf"
	if err := checkEqArgs(op, port, end, link); err != nil {
		return nil, err
	}
	if lane < 0 || lane > 0xff {
		return nil, fmt.Errorf("%s: %w: lane %d", op, ErrInvalidArgument, lane)
	}
	codec, err := c.codec(op)
	if err != nil {
		return nil, err
	}
	return codec.portEqTxFSLF(c, port, lane, end, link)
}
