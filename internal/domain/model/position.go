// Package model contains domain models passed between layers.
package model

// Position is the general role of a player.
type Position string

// General positions.
const (
	Goalkeeper Position = "GK"
	Defender   Position = "DF"
	Midfielder Position = "MF"
	Forward    Position = "FW"
)

// PositionCode is a slot on the pitch, narrower than a Position.
// Codes are unique inside a lineup so a formation maps each code to one player.
type PositionCode string

// Specific position codes.
const (
	GK  PositionCode = "GK"
	LB  PositionCode = "LB"
	LCB PositionCode = "LCB"
	CB  PositionCode = "CB"
	RCB PositionCode = "RCB"
	RB  PositionCode = "RB"
	LWB PositionCode = "LWB"
	RWB PositionCode = "RWB"
	LDM PositionCode = "LDM"
	DM  PositionCode = "DM"
	RDM PositionCode = "RDM"
	LM  PositionCode = "LM"
	LCM PositionCode = "LCM"
	CM  PositionCode = "CM"
	RCM PositionCode = "RCM"
	RM  PositionCode = "RM"
	LAM PositionCode = "LAM"
	AM  PositionCode = "AM"
	RAM PositionCode = "RAM"
	LW  PositionCode = "LW"
	RW  PositionCode = "RW"
	LS  PositionCode = "LS"
	ST  PositionCode = "ST"
	RS  PositionCode = "RS"
)

// AllPositionCodes lists every code in pitch order, goalkeeper first.
var AllPositionCodes = []PositionCode{ //nolint:gochecknoglobals // fixed lookup table
	GK, LB, LCB, CB, RCB, RB, LWB, RWB,
	LDM, DM, RDM, LM, LCM, CM, RCM, RM,
	LAM, AM, RAM, LW, RW, LS, ST, RS,
}

// General maps a code to its general position.
func (c PositionCode) General() Position {
	switch c {
	case GK:
		return Goalkeeper
	case LB, LCB, CB, RCB, RB, LWB, RWB:
		return Defender
	case LW, RW, LS, ST, RS:
		return Forward
	default:
		return Midfielder
	}
}
