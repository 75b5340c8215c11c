package diag

import "github.com/apmismail/switchtec-user/mrpc"

// gen5Codec implements the Gen5 wire layouts for the generation-dispatched
// features.
type gen5Codec struct{}

// Gen5 equalization sub-commands, carried in the first byte of the Gen5
// port equalization request. Previous snapshots use the same commands
// with the dump type selector instead of a separate command id.
const (
	gen5EqSubCoeffLocal = 0x21
	gen5EqSubCoeffFar   = 0x22
	gen5EqSubTableFar   = 0x23
	gen5EqSubFSLFLocal  = 0x24
	gen5EqSubFSLFFar    = 0x25
)

// Dump type selector byte.
const (
	gen5EqDumpCurrent = 0
	gen5EqDumpPrev    = 1
)

// Link rate recorded in previous-snapshot requests.
const gen5EqPrevRate = 5

// Gen5 equalization wire sizes. The local coefficient response carries a
// per-lane figure-of-merit detail byte pair that the far-end response
// lacks, so the two layouts have different strides. Lane and step counts
// are transmitted as count minus one.
const (
	gen5EqCoeffInLen       = 8                 // cmd(1) op(1) port(1) lane(1) dump_type(1) prev_rate(1) rsvd(2)
	gen5EqCoeffLocalOutLen = 4 + 4*eqMaxLanes  // lane_cnt-1(1) rsvd(3) + {pre,post,fom,rsvd} per lane
	gen5EqCoeffFarOutLen   = 4 + 2*eqMaxLanes  // lane_cnt-1(1) rsvd(3) + {pre,post} per lane
	gen5EqTableInLen       = 4                 // sub(1) port(1) dump_type(1) prev_rate(1)
	gen5EqTableOutLen      = 4 + 6*eqMaxSteps  // lane(1) step_cnt-1(1) rsvd(2) + {pre,post,err,active,speed,rsvd} per step
	gen5EqFSLFInLen        = 8                 // sub(1) port(1) lane(1) dump_type(1) prev_rate(1) rsvd(3)
)

func (gen5Codec) portEqTxCoeff(c *Client, port int, end EqEnd, link Link) (*PortEqCoeff, error) {
	const op = "port eq coeff"

	sub := byte(gen5EqSubCoeffLocal)
	stride := 4
	outLen := gen5EqCoeffLocalOutLen
	if end == EqFarEnd {
		sub = gen5EqSubCoeffFar
		stride = 2
		outLen = gen5EqCoeffFarOutLen
	}

	// One allocation backs the whole exchange; the request header and
	// the response region are separate views into it.
	buf := make([]byte, gen5EqCoeffInLen+outLen)
	req := buf[:gen5EqCoeffInLen]
	resp := buf[gen5EqCoeffInLen:]

	req[0] = sub
	req[1] = eqOpPerPort
	req[2] = byte(port)
	if link == LinkPrevious {
		req[4] = gen5EqDumpPrev
		req[5] = gen5EqPrevRate
	}

	if err := c.run(op, mrpc.Gen5PortEq, req, resp); err != nil {
		return nil, err
	}

	res := &PortEqCoeff{LaneCnt: int(resp[0]) + 1}
	if res.LaneCnt > eqMaxLanes {
		res.LaneCnt = eqMaxLanes
	}
	res.Cursors = make([]EqCursor, res.LaneCnt)
	for i := range res.Cursors {
		res.Cursors[i] = EqCursor{
			Pre:  resp[4+stride*i],
			Post: resp[4+stride*i+1],
		}
	}
	return res, nil
}

func (gen5Codec) portEqTxTable(c *Client, port int, link Link) (*PortEqTable, error) {
	const op = "port eq table"

	req := make([]byte, gen5EqTableInLen)
	req[0] = gen5EqSubTableFar
	req[1] = byte(port)
	if link == LinkPrevious {
		req[2] = gen5EqDumpPrev
		req[3] = gen5EqPrevRate
	}

	resp := make([]byte, gen5EqTableOutLen)
	if err := c.run(op, mrpc.Gen5PortEq, req, resp); err != nil {
		return nil, err
	}

	tab := &PortEqTable{Lane: int(resp[0]), StepCnt: int(resp[1]) + 1}
	if tab.StepCnt > eqMaxSteps {
		tab.StepCnt = eqMaxSteps
	}
	tab.Steps = make([]PortEqTableStep, tab.StepCnt)
	for i := range tab.Steps {
		rec := resp[4+6*i : 4+6*i+6]
		// Gen5 hardware reports no figure of merit and no cursor-up
		// adjustments; those fields stay zero.
		tab.Steps[i] = PortEqTableStep{
			PreCursor:    rec[0],
			PostCursor:   rec[1],
			ErrorStatus:  rec[2],
			ActiveStatus: rec[3],
			Speed:        rec[4],
		}
	}
	return tab, nil
}

func (gen5Codec) portEqTxFSLF(c *Client, port, lane int, end EqEnd, link Link) (*PortEqFSLF, error) {
	const op = "port eq fs/lf"

	sub := byte(gen5EqSubFSLFLocal)
	if end == EqFarEnd {
		sub = gen5EqSubFSLFFar
	}

	req := make([]byte, gen5EqFSLFInLen)
	req[0] = sub
	req[1] = byte(port)
	req[2] = byte(lane)
	if link == LinkPrevious {
		req[3] = gen5EqDumpPrev
		req[4] = gen5EqPrevRate
	}

	resp := make([]byte, eqGen4FSLFOutLen)
	if err := c.run(op, mrpc.Gen5PortEq, req, resp); err != nil {
		return nil, err
	}
	return &PortEqFSLF{FS: resp[0], LF: resp[1]}, nil
}
