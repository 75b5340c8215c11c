package diag

import (
	"encoding/binary"

	"github.com/apmismail/switchtec-user/mrpc"
)

// Gen5 LTSSM log sub-commands and sizes. The status response leads with a
// 16-bit available entry count; dump requests take 16-bit index and count
// fields and each dump page carries a 4-byte header ahead of its 16-byte
// records.
const (
	gen5LtssmSubStatus = 20
	gen5LtssmSubDump   = 21

	gen5LtssmMaxPage      = 63
	gen5LtssmHeaderLen    = 4
	gen5LtssmRecLen       = 16
	gen5LtssmStatusOutLen = 9
	gen5LtssmDumpInLen    = 6
)

func (gen5Codec) ltssmLog(c *Client, port, count int) ([]LtssmLogEntry, error) {
	const op = "ltssm log"
	return c.ltssmFrozen(op, port, func() ([]LtssmLogEntry, error) {
		return gen5LtssmDump(c, op, port, count)
	})
}

func gen5LtssmDump(c *Client, op string, port, count int) ([]LtssmLogEntry, error) {
	status := make([]byte, gen5LtssmStatusOutLen)
	req := []byte{gen5LtssmSubStatus, byte(port)}
	if err := c.run(op, mrpc.PortLtssmLog, req, status); err != nil {
		return nil, err
	}
	if avail := int(binary.LittleEndian.Uint16(status)); count > avail {
		count = avail
	}
	if count == 0 {
		return nil, nil
	}

	entries := make([]LtssmLogEntry, 0, count)
	for idx := 0; idx < count; {
		n := count - idx
		if n > gen5LtssmMaxPage {
			n = gen5LtssmMaxPage
		}
		req := make([]byte, gen5LtssmDumpInLen)
		req[0] = gen5LtssmSubDump
		req[1] = byte(port)
		binary.LittleEndian.PutUint16(req[2:4], uint16(idx))
		binary.LittleEndian.PutUint16(req[4:6], uint16(n))
		resp := make([]byte, gen5LtssmHeaderLen+n*gen5LtssmRecLen)
		if err := c.run(op, mrpc.PortLtssmLog, req, resp); err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			entries = append(entries, decodeGen5LtssmRecord(resp[gen5LtssmHeaderLen+i*gen5LtssmRecLen:]))
		}
		idx += n
	}
	return entries, nil
}

// A Gen5 log record is four little-endian words. The first packs, LSB
// first: a 3-bit receiver sub-state, the 4-bit minor state, the 6-bit
// major state, the 3-bit rate code and an overflow flag. The second word
// is the low 32 timestamp bits and the low 5 bits of the third word
// extend it; the fourth word is a condition code. Only state, rate and
// timestamp feed the decoded entry.
func decodeGen5LtssmRecord(rec []byte) LtssmLogEntry {
	dw0 := binary.LittleEndian.Uint32(rec[0:4])
	dw2 := binary.LittleEndian.Uint32(rec[8:12])
	return LtssmLogEntry{
		Timestamp:     binary.LittleEndian.Uint32(rec[4:8]),
		TimestampHigh: uint8(dw2 & 0x1f),
		LinkRate:      ltssmLinkRate((dw0 >> 13) & 0x7),
		LinkState:     ltssmLinkState((dw0>>7)&0x3f, (dw0>>3)&0xf),
	}
}
