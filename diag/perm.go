package diag

import (
	"encoding/binary"

	"github.com/apmismail/switchtec-user/mrpc"
)

// PermEntry reports whether one MRPC command id may be issued over the
// current channel, along with its descriptor. Entries for ids whose
// permission bit is clear stay zero.
type PermEntry struct {
	Allowed bool
	Info    mrpc.Info
}

// Descriptor synthesized for a permitted id the static table does not
// know.
var unknownCmd = mrpc.Info{Tag: "UNKNOWN", Desc: "Unknown MRPC Command", Reserved: true}

// PermTable reads the per-command permission bitmap and expands it into
// one entry per command id, resolving descriptors through the configured
// lookup.
func (c *Client) PermTable() ([]PermEntry, error) {
	const op = "perm table"
	resp := make([]byte, (mrpc.MaxID+31)/32*4)
	if err := c.run(op, mrpc.PermTableGet, nil, resp); err != nil {
		return nil, err
	}

	table := make([]PermEntry, mrpc.MaxID)
	for id := range table {
		word := binary.LittleEndian.Uint32(resp[id/32*4:])
		if word>>(id%32)&1 == 0 {
			continue
		}
		table[id].Allowed = true
		if info, ok := c.describe(mrpc.ID(id)); ok {
			table[id].Info = info
		} else {
			table[id].Info = unknownCmd
		}
	}
	return table, nil
}
