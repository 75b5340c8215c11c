package diag

import "github.com/apmismail/switchtec-user/mrpc"

// gen4Codec implements the Gen4 wire layouts for the generation-dispatched
// features.
type gen4Codec struct{}

// Gen4 equalization wire sizes. Requests are 4 bytes: sub(1) op(1)
// port(1) rsvd(1) for the coefficient dump, sub(1) port(1) lane(1)
// rsvd(1) for the table and FS/LF dumps. Lane and step counts are
// transmitted as count minus one.
const (
	eqGen4CoeffOutLen = 4 + 2*eqMaxLanes // sub(1) port(1) lane_cnt-1(1) rsvd(1) + {pre,post} per lane
	eqGen4TableOutLen = 4 + 8*eqMaxSteps // sub(1) lane(1) step_cnt-1(1) rsvd(1) + 8 B per step
	eqGen4FSLFOutLen  = 4                // fs(1) lf(1) rsvd(2)
)

func (gen4Codec) portEqTxCoeff(c *Client, port int, end EqEnd, link Link) (*PortEqCoeff, error) {
	const op = "port eq coeff"

	var cmd mrpc.ID
	var sub byte
	switch {
	case link == LinkCurrent && end == EqLocal:
		cmd, sub = mrpc.PortEqStatus, eqSubCoeffLocal
	case link == LinkCurrent:
		cmd, sub = mrpc.PortEqStatus, eqSubCoeffFar
	case end == EqLocal:
		cmd, sub = mrpc.ExtRcvrObjDump, extDumpSubCoeffLocalPrev
	default:
		cmd, sub = mrpc.ExtRcvrObjDump, extDumpSubCoeffFarPrev
	}

	req := []byte{sub, eqOpPerPort, byte(port), 0}
	resp := make([]byte, eqGen4CoeffOutLen)
	if err := c.run(op, cmd, req, resp); err != nil {
		return nil, err
	}

	res := &PortEqCoeff{LaneCnt: int(resp[2]) + 1}
	if res.LaneCnt > eqMaxLanes {
		res.LaneCnt = eqMaxLanes
	}
	res.Cursors = make([]EqCursor, res.LaneCnt)
	for i := range res.Cursors {
		res.Cursors[i] = EqCursor{Pre: resp[4+2*i], Post: resp[5+2*i]}
	}
	return res, nil
}

func (gen4Codec) portEqTxTable(c *Client, port int, link Link) (*PortEqTable, error) {
	const op = "port eq table"

	var cmd mrpc.ID
	var sub byte
	if link == LinkCurrent {
		cmd, sub = mrpc.PortEqStatus, eqSubTableFar
	} else {
		cmd, sub = mrpc.ExtRcvrObjDump, extDumpSubTablePrev
	}

	req := []byte{sub, byte(port), 0, 0}
	resp := make([]byte, eqGen4TableOutLen)
	if err := c.run(op, cmd, req, resp); err != nil {
		return nil, err
	}

	tab := &PortEqTable{Lane: int(resp[1]), StepCnt: int(resp[2]) + 1}
	if tab.StepCnt > eqMaxSteps {
		tab.StepCnt = eqMaxSteps
	}
	tab.Steps = make([]PortEqTableStep, tab.StepCnt)
	for i := range tab.Steps {
		rec := resp[4+8*i : 4+8*i+8]
		tab.Steps[i] = PortEqTableStep{
			PreCursor:    rec[0],
			PostCursor:   rec[1],
			FOM:          rec[2],
			PreCursorUp:  rec[3],
			PostCursorUp: rec[4],
			ErrorStatus:  rec[5],
			ActiveStatus: rec[6],
			Speed:        rec[7],
		}
	}
	return tab, nil
}

func (gen4Codec) portEqTxFSLF(c *Client, port, lane int, end EqEnd, link Link) (*PortEqFSLF, error) {
	const op = "port eq fs/lf"

	var cmd mrpc.ID
	var sub byte
	switch {
	case link == LinkCurrent && end == EqLocal:
		cmd, sub = mrpc.PortEqStatus, eqSubFSLFLocal
	case link == LinkCurrent:
		cmd, sub = mrpc.PortEqStatus, eqSubFSLFFar
	case end == EqLocal:
		cmd, sub = mrpc.ExtRcvrObjDump, extDumpSubFSLFLocalPrev
	default:
		cmd, sub = mrpc.ExtRcvrObjDump, extDumpSubFSLFFarPrev
	}

	req := []byte{sub, byte(port), byte(lane), 0}
	resp := make([]byte, eqGen4FSLFOutLen)
	if err := c.run(op, cmd, req, resp); err != nil {
		return nil, err
	}
	return &PortEqFSLF{FS: resp[0], LF: resp[1]}, nil
}
