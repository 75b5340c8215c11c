package diag

import (
	"encoding/binary"

	"github.com/apmismail/switchtec-user/mrpc"
)

// Gen4 LTSSM log sub-commands and sizes. The status response carries two
// 32-bit trigger words followed by the available entry count; a dump
// response is a bare record array, 8 bytes per record.
const (
	gen4LtssmSubStatus = 13
	gen4LtssmSubDump   = 15

	gen4LtssmMaxDump      = 126
	gen4LtssmRecLen       = 8
	gen4LtssmStatusOutLen = 9
)

func (gen4Codec) ltssmLog(c *Client, port, count int) ([]LtssmLogEntry, error) {
	const op = "ltssm log"
	return c.ltssmFrozen(op, port, func() ([]LtssmLogEntry, error) {
		return gen4LtssmDump(c, op, port, count)
	})
}

func gen4LtssmDump(c *Client, op string, port, count int) ([]LtssmLogEntry, error) {
	status := make([]byte, gen4LtssmStatusOutLen)
	req := []byte{gen4LtssmSubStatus, byte(port)}
	if err := c.run(op, mrpc.PortLtssmLog, req, status); err != nil {
		return nil, err
	}
	if avail := int(status[8]); count > avail {
		count = avail
	}
	if count == 0 {
		return nil, nil
	}

	// One dump covers up to 126 records; past that the remainder comes in
	// a second dump starting where the first left off.
	first := count
	if first > gen4LtssmMaxDump {
		first = gen4LtssmMaxDump
	}
	entries, err := gen4LtssmDumpPage(c, op, port, 0, first, nil)
	if err != nil {
		return nil, err
	}
	if count > gen4LtssmMaxDump {
		entries, err = gen4LtssmDumpPage(c, op, port, gen4LtssmMaxDump, count-gen4LtssmMaxDump, entries)
		if err != nil {
			return nil, err
		}
	}
	return entries, nil
}

func gen4LtssmDumpPage(c *Client, op string, port, index, n int, out []LtssmLogEntry) ([]LtssmLogEntry, error) {
	req := []byte{gen4LtssmSubDump, byte(port), byte(index), byte(n)}
	resp := make([]byte, n*gen4LtssmRecLen)
	if err := c.run(op, mrpc.PortLtssmLog, req, resp); err != nil {
		return out, err
	}
	for i := 0; i < n; i++ {
		out = append(out, decodeGen4LtssmRecord(resp[i*gen4LtssmRecLen:]))
	}
	return out, nil
}

// A Gen4 log record is two little-endian words. The low word packs the
// minor state at bit 3, the major state at bit 7 and the 2-bit rate code
// at bit 13; the high word's low 26 bits are the timestamp. There is no
// high-timestamp extension on Gen4.
func decodeGen4LtssmRecord(rec []byte) LtssmLogEntry {
	dw0 := binary.LittleEndian.Uint32(rec[0:4])
	dw1 := binary.LittleEndian.Uint32(rec[4:8])
	return LtssmLogEntry{
		Timestamp: dw1 & 0x3ffffff,
		LinkRate:  ltssmLinkRate((dw0 >> 13) & 0x3),
		LinkState: ltssmLinkState((dw0>>7)&0xf, (dw0>>3)&0xf),
	}
}
