package diag

import (
	"encoding/binary"
	"fmt"

	"github.com/apmismail/switchtec-user/mrpc"
)

// CrossHairState tracks one lane's eye boundary search.
type CrossHairState uint8

const (
	CrossHairDisabled CrossHairState = 0
	CrossHairWaiting  CrossHairState = 1
	CrossHairRunning  CrossHairState = 2
	CrossHairDone     CrossHairState = 3
	CrossHairError    CrossHairState = 4
)

func (s CrossHairState) String() string {
	switch s {
	case CrossHairDisabled:
		return "DISABLED"
	case CrossHairWaiting:
		return "WAITING"
	case CrossHairRunning:
		return "RUNNING"
	case CrossHairDone:
		return "DONE"
	case CrossHairError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// AllLanes selects every lane of the port for CrossHairEnable.
const AllLanes = 0xff

// Cross-hair sub-commands.
const (
	crossHairSubEnable  = 0x01
	crossHairSubDisable = 0x02
	crossHairSubGet     = 0x03
)

// Cross-hair wire sizes. Requests are sub(1) lane(1) all_lanes(1)
// num_lanes(1); the get response is one 20-byte slot per lane: state(1)
// lane(1) prev_state(1) rsvd(1) followed by eight signed 16-bit fields
// (x, y, then the left/right, bottom-left/right, top-left/right limits).
const (
	crossHairInLen    = 4
	crossHairSlotLen  = 20
	crossHairMaxLanes = 16
)

// CrossHairResult is one lane's state from a cross-hair search. Only the
// fields valid for the state carry data: position while Running, the six
// eye limits once Done, position plus the prior state on Error.
type CrossHairResult struct {
	Lane  int
	State CrossHairState

	// Populated while Running and on Error.
	XPos int
	YPos int

	// Populated on Error: the state the search failed in.
	PrevState CrossHairState

	// Populated once Done.
	EyeLeft     int
	EyeRight    int
	EyeBotLeft  int
	EyeBotRight int
	EyeTopLeft  int
	EyeTopRight int
}

// CrossHairEnable starts a boundary search on lane, or on every lane of
// the port when passed AllLanes.
func (c *Client) CrossHairEnable(lane int) error {
	const op = "cross hair enable"
	if lane < 0 || lane > 0xff {
		return fmt.Errorf("%s: %w: lane %d", op, ErrInvalidArgument, lane)
	}
	req := make([]byte, crossHairInLen)
	req[0] = crossHairSubEnable
	req[1] = byte(lane)
	if lane == AllLanes {
		req[2] = 1
	}
	return c.run(op, mrpc.CrossHair, req, nil)
}

// CrossHairDisable stops any running boundary search.
func (c *Client) CrossHairDisable() error {
	req := make([]byte, crossHairInLen)
	req[0] = crossHairSubDisable
	return c.run("cross hair disable", mrpc.CrossHair, req, nil)
}

// CrossHairGet reads the search state of numLanes consecutive lanes
// starting at startLane. Each lane slot decodes independently of its
// neighbours.
func (c *Client) CrossHairGet(startLane, numLanes int) ([]CrossHairResult, error) {
	const op = "cross hair get"
	if startLane < 0 || startLane > 0xff {
		return nil, fmt.Errorf("%s: %w: start lane %d", op, ErrInvalidArgument, startLane)
	}
	if numLanes < 1 || numLanes > crossHairMaxLanes {
		return nil, fmt.Errorf("%s: %w: lane count %d", op, ErrInvalidArgument, numLanes)
	}

	req := make([]byte, crossHairInLen)
	req[0] = crossHairSubGet
	req[1] = byte(startLane)
	req[3] = byte(numLanes)
	resp := make([]byte, numLanes*crossHairSlotLen)
	if err := c.run(op, mrpc.CrossHair, req, resp); err != nil {
		return nil, err
	}

	res := make([]CrossHairResult, numLanes)
	for i := range res {
		res[i] = decodeCrossHair(resp[i*crossHairSlotLen : (i+1)*crossHairSlotLen])
	}
	return res, nil
}

func decodeCrossHair(slot []byte) CrossHairResult {
	r := CrossHairResult{
		State: CrossHairState(slot[0]),
		Lane:  int(slot[1]),
	}
	switch {
	case r.State <= CrossHairWaiting:
		// No geometry yet.
	case r.State < CrossHairDone:
		r.XPos = s16(slot[4:])
		r.YPos = s16(slot[6:])
	case r.State == CrossHairDone:
		r.EyeLeft = s16(slot[8:])
		r.EyeRight = s16(slot[10:])
		r.EyeBotLeft = s16(slot[12:])
		r.EyeBotRight = s16(slot[14:])
		r.EyeTopLeft = s16(slot[16:])
		r.EyeTopRight = s16(slot[18:])
	case r.State == CrossHairError:
		r.XPos = s16(slot[4:])
		r.YPos = s16(slot[6:])
		r.PrevState = CrossHairState(slot[2])
	}
	return r
}

// s16 extracts a signed little-endian 16-bit field.
func s16(b []byte) int {
	return int(int16(binary.LittleEndian.Uint16(b)))
}
