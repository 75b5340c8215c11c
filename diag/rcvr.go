package diag

import (
	"encoding/binary"
	"fmt"

	"github.com/apmismail/switchtec-user/mrpc"
)

// Link selects which link-up snapshot a dump reads.
type Link int

const (
	LinkCurrent  Link = iota // live state of the link
	LinkPrevious             // state captured at the previous link-up
)

func (l Link) String() string {
	switch l {
	case LinkCurrent:
		return "CURRENT"
	case LinkPrevious:
		return "PREVIOUS"
	default:
		return "UNKNOWN"
	}
}

// Extended receiver object dump sub-commands. The previous-snapshot
// variants of the Gen4 equalization dumps ride on this command as well.
const (
	extDumpSubRcvrObjPrev    = 0x01
	extDumpSubRcvrExt        = 0x02
	extDumpSubRcvrExtPrev    = 0x03
	extDumpSubCoeffLocalPrev = 0x04
	extDumpSubCoeffFarPrev   = 0x05
	extDumpSubTablePrev      = 0x06
	extDumpSubFSLFLocalPrev  = 0x07
	extDumpSubFSLFFarPrev    = 0x08
)

// Receiver dump wire sizes. Requests are 4 bytes; the current-snapshot
// receiver object request carries no sub-command byte, its command id
// takes port and lane directly.
const (
	rcvrObjOutLen = 12 // port(1) lane(1) ctle(1) target_amplitude(1) spec_dfe(1) dyn_dfe(7)
	rcvrExtOutLen = 8  // port(1) lane(1) ctle2_rx_mode(2) dtclk_9(1) dtclk_8_6(1) dtclk_5(1) rsvd(1)
)

// RcvrObj is the receiver equalization state of one lane.
type RcvrObj struct {
	Port            int
	Lane            int
	CTLE            uint8
	TargetAmplitude uint8
	SpeculativeDFE  uint8
	DynamicDFE      [7]int8
}

// RcvrExt is the extended receiver state of one lane.
type RcvrExt struct {
	Port        int
	Lane        int
	CTLE2RxMode uint16
	DTClk9      uint8
	DTClk86     uint8
	DTClk5      uint8
}

func checkPortLane(op string, port, lane int) error {
	if port < 0 || port > 0xff {
		return fmt.Errorf("%s: %w: port %d", op, ErrInvalidArgument, port)
	}
	if lane < 0 || lane > 0xff {
		return fmt.Errorf("%s: %w: lane %d", op, ErrInvalidArgument, lane)
	}
	return nil
}

// RcvrObjDump reads the receiver object of one lane: the live state for
// LinkCurrent, or the snapshot captured at the previous link-up for
// LinkPrevious.
func (c *Client) RcvrObjDump(port, lane int, link Link) (*RcvrObj, error) {
	const op = "rcvr obj dump"
	if err := checkPortLane(op, port, lane); err != nil {
		return nil, err
	}

	resp := make([]byte, rcvrObjOutLen)
	switch link {
	case LinkCurrent:
		req := []byte{byte(port), byte(lane), 0, 0}
		if err := c.run(op, mrpc.RcvrObjDump, req, resp); err != nil {
			return nil, err
		}
	case LinkPrevious:
		req := []byte{extDumpSubRcvrObjPrev, byte(port), byte(lane), 0}
		if err := c.run(op, mrpc.ExtRcvrObjDump, req, resp); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%s: %w: link %d", op, ErrInvalidArgument, int(link))
	}

	obj := &RcvrObj{
		Port:            int(resp[0]),
		Lane:            int(resp[1]),
		CTLE:            resp[2],
		TargetAmplitude: resp[3],
		SpeculativeDFE:  resp[4],
	}
	for i := range obj.DynamicDFE {
		obj.DynamicDFE[i] = int8(resp[5+i])
	}
	return obj, nil
}

// RcvrExtDump reads the extended receiver state of one lane for the
// selected link-up snapshot.
func (c *Client) RcvrExtDump(port, lane int, link Link) (*RcvrExt, error) {
	const op = "rcvr ext dump"
	if err := checkPortLane(op, port, lane); err != nil {
		return nil, err
	}

	var sub byte
	switch link {
	case LinkCurrent:
		sub = extDumpSubRcvrExt
	case LinkPrevious:
		sub = extDumpSubRcvrExtPrev
	default:
		return nil, fmt.Errorf("%s: %w: link %d", op, ErrInvalidArgument, int(link))
	}

	req := []byte{sub, byte(port), byte(lane), 0}
	resp := make([]byte, rcvrExtOutLen)
	if err := c.run(op, mrpc.ExtRcvrObjDump, req, resp); err != nil {
		return nil, err
	}

	return &RcvrExt{
		Port:        int(resp[0]),
		Lane:        int(resp[1]),
		CTLE2RxMode: binary.LittleEndian.Uint16(resp[2:]),
		DTClk9:      resp[4],
		DTClk86:     resp[5],
		DTClk5:      resp[6],
	}, nil
}
