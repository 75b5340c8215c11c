package diag

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/apmismail/switchtec-user/mrpc"
)

// crossHairSlot builds one 20-byte lane slot with every geometry field
// populated, so tests can prove the decoder only picks the fields valid
// for the state.
func crossHairSlot(state CrossHairState, lane int, prev CrossHairState, fields [8]int16) []byte {
	slot := make([]byte, crossHairSlotLen)
	slot[0] = byte(state)
	slot[1] = byte(lane)
	slot[2] = byte(prev)
	for i, v := range fields {
		binary.LittleEndian.PutUint16(slot[4+2*i:], uint16(v))
	}
	return slot
}

func TestCrossHairGetMixedStates(t *testing.T) {
	var resp []byte
	resp = append(resp, crossHairSlot(CrossHairRunning, 4, 0, [8]int16{-5, 10, 99, 99, 99, 99, 99, 99})...)
	resp = append(resp, crossHairSlot(CrossHairDone, 5, 0, [8]int16{99, 99, -10, 11, -12, 13, -14, 15})...)
	resp = append(resp, crossHairSlot(CrossHairError, 6, CrossHairRunning, [8]int16{-3, 4, 99, 99, 99, 99, 99, 99})...)
	dev := &mockDevice{gen: Gen4, replies: []reply{{resp: resp}}}
	c, _ := testClient(dev)

	got, err := c.CrossHairGet(4, 3)
	if err != nil {
		t.Fatalf("CrossHairGet: %v", err)
	}

	want := []CrossHairResult{
		{Lane: 4, State: CrossHairRunning, XPos: -5, YPos: 10},
		{Lane: 5, State: CrossHairDone,
			EyeLeft: -10, EyeRight: 11,
			EyeBotLeft: -12, EyeBotRight: 13,
			EyeTopLeft: -14, EyeTopRight: 15},
		{Lane: 6, State: CrossHairError, XPos: -3, YPos: 4, PrevState: CrossHairRunning},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}

	wantReq := []byte{crossHairSubGet, 4, 0, 3}
	if !cmp.Equal(wantReq, dev.calls[0].req) {
		t.Errorf("request = %v, want %v", dev.calls[0].req, wantReq)
	}
	if dev.calls[0].respLen != 3*crossHairSlotLen {
		t.Errorf("response buffer = %d B, want %d", dev.calls[0].respLen, 3*crossHairSlotLen)
	}
}

func TestCrossHairGetWaitingHasNoGeometry(t *testing.T) {
	resp := crossHairSlot(CrossHairWaiting, 0, 0, [8]int16{99, 99, 99, 99, 99, 99, 99, 99})
	dev := &mockDevice{gen: Gen4, replies: []reply{{resp: resp}}}
	c, _ := testClient(dev)

	got, err := c.CrossHairGet(0, 1)
	if err != nil {
		t.Fatalf("CrossHairGet: %v", err)
	}
	want := []CrossHairResult{{Lane: 0, State: CrossHairWaiting}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}
}

func TestCrossHairGetBounds(t *testing.T) {
	dev := &mockDevice{gen: Gen4}
	c, _ := testClient(dev)

	if _, err := c.CrossHairGet(0, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("numLanes 0 = %v, want ErrInvalidArgument", err)
	}
	if _, err := c.CrossHairGet(0, crossHairMaxLanes+1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("numLanes %d = %v, want ErrInvalidArgument", crossHairMaxLanes+1, err)
	}
	if _, err := c.CrossHairGet(-1, 1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("startLane -1 = %v, want ErrInvalidArgument", err)
	}
	if len(dev.calls) != 0 {
		t.Errorf("device was called for rejected arguments")
	}
}

func TestCrossHairEnableSingleLane(t *testing.T) {
	dev := &mockDevice{gen: Gen4, replies: []reply{{}}}
	c, _ := testClient(dev)

	if err := c.CrossHairEnable(7); err != nil {
		t.Fatalf("CrossHairEnable: %v", err)
	}
	got := dev.calls[0]
	if got.cmd != mrpc.CrossHair {
		t.Errorf("cmd = %#x, want CrossHair", uint32(got.cmd))
	}
	wantReq := []byte{crossHairSubEnable, 7, 0, 0}
	if !cmp.Equal(wantReq, got.req) {
		t.Errorf("request = %v, want %v", got.req, wantReq)
	}
	if got.respLen != 0 {
		t.Errorf("enable expects no response payload, buffer = %d B", got.respLen)
	}
}

func TestCrossHairEnableAllLanes(t *testing.T) {
	dev := &mockDevice{gen: Gen4, replies: []reply{{}}}
	c, _ := testClient(dev)

	if err := c.CrossHairEnable(AllLanes); err != nil {
		t.Fatalf("CrossHairEnable: %v", err)
	}
	wantReq := []byte{crossHairSubEnable, AllLanes, 1, 0}
	if !cmp.Equal(wantReq, dev.calls[0].req) {
		t.Errorf("request = %v, want %v", dev.calls[0].req, wantReq)
	}
}

func TestCrossHairDisable(t *testing.T) {
	dev := &mockDevice{gen: Gen4, replies: []reply{{}}}
	c, _ := testClient(dev)

	if err := c.CrossHairDisable(); err != nil {
		t.Fatalf("CrossHairDisable: %v", err)
	}
	wantReq := []byte{crossHairSubDisable, 0, 0, 0}
	if !cmp.Equal(wantReq, dev.calls[0].req) {
		t.Errorf("request = %v, want %v", dev.calls[0].req, wantReq)
	}
}
