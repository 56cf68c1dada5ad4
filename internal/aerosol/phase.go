package aerosol

import (
	"fmt"
	"strings"
)

// Phase selects which coagulation processes apply to a population.
type Phase int

const (
	Unknown Phase = iota
	Liquid
	Ice
	Soot
)

var phaseNames = map[Phase]string{
	Unknown: "unknown",
	Liquid:  "liquid",
	Ice:     "ice",
	Soot:    "soot",
}

// phaseTags lists every accepted spelling.
var phaseTags = map[string]Phase{
	"liq":     Liquid,
	"liquid":  Liquid,
	"sulfate": Liquid,
	"ice":     Ice,
	"soot":    Soot,
	"bc":      Soot,
}

// ParsePhase maps a phase tag to its Phase. Unrecognised tags yield Unknown
// together with an error wrapping ErrUnknownPhase.
func ParsePhase(s string) (Phase, error) {
	p, ok := phaseTags[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return Unknown, fmt.Errorf("%w: %q (options are liquid, ice or soot)", ErrUnknownPhase, s)
	}
	return p, nil
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Valid reports whether p is one of the supported phases.
func (p Phase) Valid() bool {
	return p == Liquid || p == Ice || p == Soot
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText accepts the same tags as ParsePhase. An unrecognised tag is
// kept as Unknown rather than rejected so that the caller decides how strict
// to be.
func (p *Phase) UnmarshalText(text []byte) error {
	*p, _ = ParsePhase(string(text))
	return nil
}
