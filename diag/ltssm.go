package diag

import (
	"fmt"

	"k8s.io/klog/v2"

	"github.com/apmismail/switchtec-user/mrpc"
)

// LtssmLogEntry is one decoded link training state transition. LinkState
// packs the major state into the low byte and the minor state into the
// high byte. TimestampHigh extends Timestamp on Gen5 hardware only; Gen4
// logs carry a bare 26-bit timestamp.
type LtssmLogEntry struct {
	Timestamp     uint32
	TimestampHigh uint8
	LinkRate      float32 // GT/s
	LinkState     uint16
}

// Freeze sub-command, shared by both generations. The status and dump
// sub-commands differ per generation.
const ltssmSubFreeze = 14

// ltssmLinkState packs a major/minor state pair into one value.
func ltssmLinkState(major, minor uint32) uint16 {
	return uint16(major) | uint16(minor)<<8
}

// ltssmLinkRate translates a per-record rate code into GT/s. Codes index
// the generation transfer table off by one (code 0 is Gen1); anything
// outside the table reads as 0.
func ltssmLinkRate(code uint32) float32 {
	idx := int(code) + 1
	if idx >= len(GenTransfers) {
		return 0
	}
	return GenTransfers[idx]
}

// ltssmSetFreeze freezes or thaws log collection on one port. Dumping a
// live log would tear records, so every retrieval brackets its dumps with
// a freeze/unfreeze pair.
func (c *Client) ltssmSetFreeze(op string, port int, freeze bool) error {
	req := []byte{ltssmSubFreeze, byte(port), boolByte(freeze), 0}
	return c.run(op, mrpc.PortLtssmLog, req, nil)
}

// ltssmFrozen runs dump with log collection frozen on port. The log is
// thawed again even when the dump fails, so the hardware is never left
// frozen; the dump's error still wins over the thaw's.
func (c *Client) ltssmFrozen(op string, port int, dump func() ([]LtssmLogEntry, error)) ([]LtssmLogEntry, error) {
	if err := c.ltssmSetFreeze(op, port, true); err != nil {
		return nil, err
	}
	entries, err := dump()
	if uerr := c.ltssmSetFreeze(op, port, false); err == nil {
		err = uerr
	}
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// LtssmLog retrieves up to count entries of the LTSSM transition log of
// port, oldest first. The log is frozen for the duration of the dump and
// thawed again even when a dump step fails. Fewer entries than requested
// are returned when the hardware has fewer available.
func (c *Client) LtssmLog(port, count int) ([]LtssmLogEntry, error) {
	const op = "ltssm log"
	if port < 0 || port > 0xff {
		return nil, fmt.Errorf("%s: %w: port %d", op, ErrInvalidArgument, port)
	}
	if count < 1 {
		return nil, fmt.Errorf("%s: %w: entry count %d", op, ErrInvalidArgument, count)
	}
	codec, err := c.codec(op)
	if err != nil {
		return nil, err
	}
	klog.V(1).Infof("%s: port %d, up to %d entries on %s", op, port, count, c.dev.Generation())
	return codec.ltssmLog(c, port, count)
}
