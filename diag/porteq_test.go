package diag

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/apmismail/switchtec-user/mrpc"
)

func buildGen4CoeffResp(port, laneCntWire int, cursors []EqCursor) []byte {
	resp := make([]byte, eqGen4CoeffOutLen)
	resp[1] = byte(port)
	resp[2] = byte(laneCntWire)
	for i, cur := range cursors {
		resp[4+2*i] = cur.Pre
		resp[4+2*i+1] = cur.Post
	}
	return resp
}

func buildGen5CoeffResp(laneCntWire, stride, outLen int, cursors []EqCursor) []byte {
	resp := make([]byte, outLen)
	resp[0] = byte(laneCntWire)
	for i, cur := range cursors {
		resp[4+stride*i] = cur.Pre
		resp[4+stride*i+1] = cur.Post
		if stride == 4 {
			resp[4+stride*i+2] = 0xaa // per-lane detail, not a coefficient
		}
	}
	return resp
}

func TestGen4CoeffCurrentLocal(t *testing.T) {
	cursors := []EqCursor{{10, 20}, {11, 21}, {12, 22}, {13, 23}, {14, 24}, {15, 25}}
	dev := &mockDevice{gen: Gen4, replies: []reply{
		{resp: buildGen4CoeffResp(3, 5, cursors)}, // wire count 5, six lanes
	}}
	c, _ := testClient(dev)

	res, err := c.PortEqTxCoeff(3, EqLocal, LinkCurrent)
	if err != nil {
		t.Fatalf("PortEqTxCoeff: %v", err)
	}
	want := &PortEqCoeff{LaneCnt: 6, Cursors: cursors}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("coeff mismatch (-want +got):\n%s", diff)
	}

	got := dev.calls[0]
	if got.cmd != mrpc.PortEqStatus {
		t.Errorf("cmd = %#x, want PortEqStatus", uint32(got.cmd))
	}
	wantReq := []byte{eqSubCoeffLocal, eqOpPerPort, 3, 0}
	if !cmp.Equal(wantReq, got.req) {
		t.Errorf("request = %v, want %v", got.req, wantReq)
	}
	if got.respLen != eqGen4CoeffOutLen {
		t.Errorf("response buffer = %d B, want %d", got.respLen, eqGen4CoeffOutLen)
	}
}

func TestGen4CoeffPreviousFarEnd(t *testing.T) {
	dev := &mockDevice{gen: Gen4, replies: []reply{
		{resp: buildGen4CoeffResp(3, 0, []EqCursor{{1, 2}})},
	}}
	c, _ := testClient(dev)

	if _, err := c.PortEqTxCoeff(3, EqFarEnd, LinkPrevious); err != nil {
		t.Fatalf("PortEqTxCoeff: %v", err)
	}
	got := dev.calls[0]
	if got.cmd != mrpc.ExtRcvrObjDump {
		t.Errorf("cmd = %#x, want ExtRcvrObjDump", uint32(got.cmd))
	}
	wantReq := []byte{extDumpSubCoeffFarPrev, eqOpPerPort, 3, 0}
	if !cmp.Equal(wantReq, got.req) {
		t.Errorf("request = %v, want %v", got.req, wantReq)
	}
}

func TestGen4CoeffLaneCountClamped(t *testing.T) {
	dev := &mockDevice{gen: Gen4, replies: []reply{
		{resp: buildGen4CoeffResp(0, 0xff, nil)},
	}}
	c, _ := testClient(dev)

	res, err := c.PortEqTxCoeff(0, EqLocal, LinkCurrent)
	if err != nil {
		t.Fatalf("PortEqTxCoeff: %v", err)
	}
	if res.LaneCnt != eqMaxLanes || len(res.Cursors) != eqMaxLanes {
		t.Errorf("LaneCnt = %d (len %d), want clamp to %d", res.LaneCnt, len(res.Cursors), eqMaxLanes)
	}
}

func TestGen4Table(t *testing.T) {
	steps := []PortEqTableStep{
		{PreCursor: 1, PostCursor: 2, FOM: 3, PreCursorUp: 4, PostCursorUp: 5, ErrorStatus: 0, ActiveStatus: 1, Speed: 3},
		{PreCursor: 6, PostCursor: 7, FOM: 8, PreCursorUp: 9, PostCursorUp: 10, ErrorStatus: 1, ActiveStatus: 0, Speed: 4},
	}
	resp := make([]byte, eqGen4TableOutLen)
	resp[1] = 9 // lane
	resp[2] = 1 // step count minus one
	for i, s := range steps {
		rec := resp[4+8*i:]
		rec[0], rec[1], rec[2], rec[3] = s.PreCursor, s.PostCursor, s.FOM, s.PreCursorUp
		rec[4], rec[5], rec[6], rec[7] = s.PostCursorUp, s.ErrorStatus, s.ActiveStatus, s.Speed
	}
	dev := &mockDevice{gen: Gen4, replies: []reply{{resp: resp}}}
	c, _ := testClient(dev)

	tab, err := c.PortEqTxTable(5, LinkCurrent)
	if err != nil {
		t.Fatalf("PortEqTxTable: %v", err)
	}
	want := &PortEqTable{Lane: 9, StepCnt: 2, Steps: steps}
	if diff := cmp.Diff(want, tab); diff != "" {
		t.Errorf("table mismatch (-want +got):\n%s", diff)
	}
	wantReq := []byte{eqSubTableFar, 5, 0, 0}
	if !cmp.Equal(wantReq, dev.calls[0].req) {
		t.Errorf("request = %v, want %v", dev.calls[0].req, wantReq)
	}
}

func TestGen5CoeffLocalStride(t *testing.T) {
	cursors := []EqCursor{{30, 40}, {31, 41}}
	dev := &mockDevice{gen: Gen5, replies: []reply{
		{resp: buildGen5CoeffResp(1, 4, gen5EqCoeffLocalOutLen, cursors)},
	}}
	c, _ := testClient(dev)

	res, err := c.PortEqTxCoeff(2, EqLocal, LinkCurrent)
	if err != nil {
		t.Fatalf("PortEqTxCoeff: %v", err)
	}
	want := &PortEqCoeff{LaneCnt: 2, Cursors: cursors}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("coeff mismatch (-want +got):\n%s", diff)
	}

	got := dev.calls[0]
	if got.cmd != mrpc.Gen5PortEq {
		t.Errorf("cmd = %#x, want Gen5PortEq", uint32(got.cmd))
	}
	wantReq := make([]byte, gen5EqCoeffInLen)
	wantReq[0] = gen5EqSubCoeffLocal
	wantReq[1] = eqOpPerPort
	wantReq[2] = 2
	if diff := cmp.Diff(wantReq, got.req); diff != "" {
		t.Errorf("request mismatch (-want +got):\n%s", diff)
	}
	if got.respLen != gen5EqCoeffLocalOutLen {
		t.Errorf("response buffer = %d B, want %d", got.respLen, gen5EqCoeffLocalOutLen)
	}
}

func TestGen5CoeffFarEndStride(t *testing.T) {
	cursors := []EqCursor{{50, 60}, {51, 61}, {52, 62}}
	dev := &mockDevice{gen: Gen5, replies: []reply{
		{resp: buildGen5CoeffResp(2, 2, gen5EqCoeffFarOutLen, cursors)},
	}}
	c, _ := testClient(dev)

	res, err := c.PortEqTxCoeff(2, EqFarEnd, LinkCurrent)
	if err != nil {
		t.Fatalf("PortEqTxCoeff: %v", err)
	}
	want := &PortEqCoeff{LaneCnt: 3, Cursors: cursors}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("coeff mismatch (-want +got):\n%s", diff)
	}
	if dev.calls[0].req[0] != gen5EqSubCoeffFar {
		t.Errorf("sub = %#x, want %#x", dev.calls[0].req[0], gen5EqSubCoeffFar)
	}
	if dev.calls[0].respLen != gen5EqCoeffFarOutLen {
		t.Errorf("response buffer = %d B, want %d", dev.calls[0].respLen, gen5EqCoeffFarOutLen)
	}
}

func TestGen5PreviousRequestFields(t *testing.T) {
	dev := &mockDevice{gen: Gen5, replies: []reply{
		{resp: buildGen5CoeffResp(0, 4, gen5EqCoeffLocalOutLen, nil)},
		{resp: make([]byte, gen5EqTableOutLen)},
		{resp: make([]byte, eqGen4FSLFOutLen)},
	}}
	c, _ := testClient(dev)

	if _, err := c.PortEqTxCoeff(1, EqLocal, LinkPrevious); err != nil {
		t.Fatalf("PortEqTxCoeff: %v", err)
	}
	if _, err := c.PortEqTxTable(1, LinkPrevious); err != nil {
		t.Fatalf("PortEqTxTable: %v", err)
	}
	if _, err := c.PortEqTxFSLF(1, 2, EqFarEnd, LinkPrevious); err != nil {
		t.Fatalf("PortEqTxFSLF: %v", err)
	}

	coeffReq := dev.calls[0].req
	if coeffReq[4] != gen5EqDumpPrev || coeffReq[5] != gen5EqPrevRate {
		t.Errorf("coeff request dump_type/prev_rate = %d/%d, want %d/%d",
			coeffReq[4], coeffReq[5], gen5EqDumpPrev, gen5EqPrevRate)
	}
	tableReq := dev.calls[1].req
	if tableReq[2] != gen5EqDumpPrev || tableReq[3] != gen5EqPrevRate {
		t.Errorf("table request dump_type/prev_rate = %d/%d, want %d/%d",
			tableReq[2], tableReq[3], gen5EqDumpPrev, gen5EqPrevRate)
	}
	fslfReq := dev.calls[2].req
	if fslfReq[0] != gen5EqSubFSLFFar || fslfReq[3] != gen5EqDumpPrev || fslfReq[4] != gen5EqPrevRate {
		t.Errorf("fs/lf request = %v, want far-end previous form", fslfReq)
	}
}

func TestGen5CurrentRequestFields(t *testing.T) {
	dev := &mockDevice{gen: Gen5, replies: []reply{
		{resp: buildGen5CoeffResp(0, 4, gen5EqCoeffLocalOutLen, nil)},
	}}
	c, _ := testClient(dev)

	if _, err := c.PortEqTxCoeff(1, EqLocal, LinkCurrent); err != nil {
		t.Fatalf("PortEqTxCoeff: %v", err)
	}
	req := dev.calls[0].req
	if req[4] != gen5EqDumpCurrent || req[5] != 0 {
		t.Errorf("current request sets dump_type/prev_rate = %d/%d, want 0/0", req[4], req[5])
	}
}

// Gen5 hardware does not report figure of merit or cursor-up adjustments;
// the decoded steps must carry zeros there no matter what arrives on the
// wire.
func TestGen5TableZeroesUnreportedFields(t *testing.T) {
	resp := make([]byte, gen5EqTableOutLen)
	resp[0] = 7 // lane
	resp[1] = 5 // step count minus one
	for i := 0; i < 6; i++ {
		rec := resp[4+6*i:]
		rec[0] = byte(10 + i) // pre
		rec[1] = byte(20 + i) // post
		rec[2] = 1            // error status
		rec[3] = 1            // active status
		rec[4] = 5            // speed
		rec[5] = 0xee         // reserved, must be ignored
	}
	dev := &mockDevice{gen: Gen5, replies: []reply{{resp: resp}}}
	c, _ := testClient(dev)

	tab, err := c.PortEqTxTable(4, LinkCurrent)
	if err != nil {
		t.Fatalf("PortEqTxTable: %v", err)
	}
	if tab.Lane != 7 || tab.StepCnt != 6 {
		t.Fatalf("lane/steps = %d/%d, want 7/6", tab.Lane, tab.StepCnt)
	}
	for i, s := range tab.Steps {
		if s.FOM != 0 || s.PreCursorUp != 0 || s.PostCursorUp != 0 {
			t.Errorf("step %d carries unreported fields: %+v", i, s)
		}
		if s.PreCursor != byte(10+i) || s.PostCursor != byte(20+i) || s.Speed != 5 {
			t.Errorf("step %d = %+v, want pre=%d post=%d speed=5", i, s, 10+i, 20+i)
		}
	}
}

func TestGen4FSLFSubCommands(t *testing.T) {
	dev := &mockDevice{gen: Gen4, replies: []reply{
		{resp: []byte{40, 12, 0, 0}},
		{resp: []byte{41, 13, 0, 0}},
	}}
	c, _ := testClient(dev)

	res, err := c.PortEqTxFSLF(6, 2, EqFarEnd, LinkCurrent)
	if err != nil {
		t.Fatalf("PortEqTxFSLF: %v", err)
	}
	if res.FS != 40 || res.LF != 12 {
		t.Errorf("fs/lf = %d/%d, want 40/12", res.FS, res.LF)
	}
	wantReq := []byte{eqSubFSLFFar, 6, 2, 0}
	if !cmp.Equal(wantReq, dev.calls[0].req) {
		t.Errorf("request = %v, want %v", dev.calls[0].req, wantReq)
	}

	if _, err := c.PortEqTxFSLF(6, 2, EqLocal, LinkPrevious); err != nil {
		t.Fatalf("PortEqTxFSLF: %v", err)
	}
	if dev.calls[1].cmd != mrpc.ExtRcvrObjDump || dev.calls[1].req[0] != extDumpSubFSLFLocalPrev {
		t.Errorf("previous local fs/lf: cmd %#x sub %#x, want ExtRcvrObjDump/%#x",
			uint32(dev.calls[1].cmd), dev.calls[1].req[0], extDumpSubFSLFLocalPrev)
	}
}

func TestPortEqUnsupportedGeneration(t *testing.T) {
	dev := &mockDevice{gen: Gen3}
	c, _ := testClient(dev)

	if _, err := c.PortEqTxCoeff(0, EqLocal, LinkCurrent); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("coeff on Gen3 = %v, want ErrInvalidArgument", err)
	}
	if _, err := c.PortEqTxTable(0, LinkCurrent); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("table on Gen3 = %v, want ErrInvalidArgument", err)
	}
	if _, err := c.PortEqTxFSLF(0, 0, EqLocal, LinkCurrent); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("fs/lf on Gen3 = %v, want ErrInvalidArgument", err)
	}
	if len(dev.calls) != 0 {
		t.Errorf("device was called on unsupported hardware")
	}
}

func TestPortEqValidation(t *testing.T) {
	dev := &mockDevice{gen: Gen4}
	c, _ := testClient(dev)

	if _, err := c.PortEqTxCoeff(0, EqEnd(9), LinkCurrent); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("bad end = %v, want ErrInvalidArgument", err)
	}
	if _, err := c.PortEqTxCoeff(0, EqLocal, Link(9)); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("bad link = %v, want ErrInvalidArgument", err)
	}
	if _, err := c.PortEqTxFSLF(0, -1, EqLocal, LinkCurrent); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("bad lane = %v, want ErrInvalidArgument", err)
	}
	if len(dev.calls) != 0 {
		t.Errorf("device was called for rejected arguments")
	}
}
