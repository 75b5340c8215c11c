// Package mrpc defines the MRPC command identifiers understood by the
// Switchtec switch firmware together with the static descriptor table used
// when reporting the command permission bitmap.
//
// MRPC is the management RPC protocol of the switch: one command id selects
// a firmware handler, and most diagnostic commands further multiplex on a
// sub-command byte carried in the first byte of the request payload.
package mrpc

// ID is an MRPC command identifier.
type ID uint32

// MaxID is the number of command ids covered by the permission bitmap.
// Ids are dense in [0, MaxID); ids outside this range are never reported.
const MaxID = 256

// Management and platform command ids.
const (
	TWI          ID = 0x01 // TWI (I2C) passthrough
	PMC          ID = 0x02 // flash program/erase controller
	DMC          ID = 0x03
	FWDL         ID = 0x07 // firmware image download
	FWTransfer   ID = 0x09
	LnkStat      ID = 0x0c // per-port link status
	MultiCfg     ID = 0x10
	PortPartP2P  ID = 0x12 // port/partition binding
	GasRead      ID = 0x29
	GasWrite     ID = 0x2a
	Echo         ID = 0x41 // echoes the inverted input payload
	StackBif     ID = 0x42 // stack bifurcation control
	SecureStater ID = 0x46
	GetPaxID     ID = 0x81
)

// Diagnostic command ids. These share the 0xd0 block; each multiplexes
// feature operations on a sub-command byte.
const (
	PortEqStatus   ID = 0xd0 // Gen4 transmitter equalization dumps
	RcvrObjDump    ID = 0xd1 // receiver object, current link-up
	TLPInject      ID = 0xd2
	EyeObserve     ID = 0xd4 // Gen4 eye capture state machine
	ExtRcvrObjDump ID = 0xd5 // previous link-up dumps and Gen4 "previous" equalization
	CrossHair      ID = 0xd6
	IntLoopback    ID = 0xd7
	PatGen         ID = 0xd8
	PortLtssmLog   ID = 0xd9
	Gen5EyeCapture ID = 0xda // Gen5 analyzer-based eye capture
	RefclkS        ID = 0xdb
	AERGen         ID = 0xdc
	Gen5PortEq     ID = 0xdd // Gen5 transmitter equalization dumps

	PermTableGet ID = 0xf5
)

// Info describes one MRPC command for permission-table reporting.
type Info struct {
	Tag      string // short mnemonic, matches firmware release notes
	Desc     string // one-line description
	Reserved bool   // true for internal/unsupported commands
}

// Describe returns the descriptor for id from the static command table.
// ok is false when the id has no entry.
func Describe(id ID) (info Info, ok bool) {
	info, ok = commands[id]
	return info, ok
}

var commands = map[ID]Info{
	TWI:          {Tag: "TWI", Desc: "TWI (I2C) bus passthrough"},
	PMC:          {Tag: "PMC", Desc: "Flash program and erase control"},
	DMC:          {Tag: "DMC", Desc: "DRAM controller access", Reserved: true},
	FWDL:         {Tag: "FWDNLD", Desc: "Firmware image download"},
	FWTransfer:   {Tag: "FWXFER", Desc: "Firmware image transfer"},
	LnkStat:      {Tag: "LNKSTAT", Desc: "Per-port link status"},
	MultiCfg:     {Tag: "MULTICFG", Desc: "Multi-configuration select"},
	PortPartP2P:  {Tag: "PORTPART", Desc: "Port to partition binding"},
	GasRead:      {Tag: "GASRD", Desc: "GAS register read", Reserved: true},
	GasWrite:     {Tag: "GASWR", Desc: "GAS register write", Reserved: true},
	Echo:         {Tag: "ECHO", Desc: "Echo the inverted input payload"},
	StackBif:     {Tag: "STACKBIF", Desc: "Stack bifurcation control"},
	SecureStater: {Tag: "SECSTATE", Desc: "Secure boot state retrieval"},
	GetPaxID:     {Tag: "PAXID", Desc: "Fabric PAX identifier"},

	PortEqStatus:   {Tag: "PORTEQ", Desc: "Port equalization status dump"},
	RcvrObjDump:    {Tag: "RCVROBJ", Desc: "Receiver object dump"},
	TLPInject:      {Tag: "TLPINJ", Desc: "TLP injection", Reserved: true},
	EyeObserve:     {Tag: "EYEOBS", Desc: "Eye observation capture"},
	ExtRcvrObjDump: {Tag: "EXTRCVROBJ", Desc: "Extended receiver object dump"},
	CrossHair:      {Tag: "XHAIR", Desc: "Cross hair eye boundary search"},
	IntLoopback:    {Tag: "LOOPBACK", Desc: "Internal loopback control"},
	PatGen:         {Tag: "PATGEN", Desc: "Pattern generator and monitor"},
	PortLtssmLog:   {Tag: "LTSSMLOG", Desc: "LTSSM transition log dump"},
	Gen5EyeCapture: {Tag: "EYECAP", Desc: "Analyzer eye capture"},
	RefclkS:        {Tag: "REFCLK", Desc: "Stack reference clock control"},
	AERGen:         {Tag: "AERGEN", Desc: "AER error event generation"},
	Gen5PortEq:     {Tag: "PORTEQ5", Desc: "Port equalization status dump"},

	PermTableGet: {Tag: "PERMTBL", Desc: "MRPC permission table retrieval"},
}
