package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Period is an art-historical movement a painting belongs to.
type Period int

const (
	PeriodUnknown Period = iota
	PeriodRenaissance
	PeriodBaroque
	PeriodRococo
	PeriodNeoclassicism
	PeriodRealism
	PeriodImpressionism
	PeriodPostImpressionism
	PeriodExpressionism
	PeriodCubism
	PeriodSurrealism
	PeriodAbstractExpressionism
	PeriodFuturism
	PeriodMinimalism
	PeriodPopArt
	PeriodSymbolism
	PeriodContemporaryConceptual
)

var periodLabels = [...]string{
	PeriodUnknown:                "",
	PeriodRenaissance:            "Renaissance",
	PeriodBaroque:                "Baroque",
	PeriodRococo:                 "Rococo",
	PeriodNeoclassicism:          "Neoclassicism",
	PeriodRealism:                "Realism",
	PeriodImpressionism:          "Impressionism",
	PeriodPostImpressionism:      "Post-Impressionism",
	PeriodExpressionism:          "Expressionism",
	PeriodCubism:                 "Cubism",
	PeriodSurrealism:             "Surrealism",
	PeriodAbstractExpressionism:  "Abstract Expressionism",
	PeriodFuturism:               "Futurism",
	PeriodMinimalism:             "Minimalism",
	PeriodPopArt:                 "Pop Art",
	PeriodSymbolism:              "Symbolism",
	PeriodContemporaryConceptual: "Contemporary / Conceptual Art",
}

// AllPeriods lists every known period in catalog order.
func AllPeriods() []Period {
	out := make([]Period, 0, len(periodLabels)-1)
	for p := PeriodRenaissance; int(p) < len(periodLabels); p++ {
		out = append(out, p)
	}
	return out
}

// Label returns the display name used in prompts, answers and JSON.
func (p Period) Label() string {
	if p <= PeriodUnknown || int(p) >= len(periodLabels) {
		return ""
	}
	return periodLabels[p]
}

func (p Period) String() string {
	if l := p.Label(); l != "" {
		return l
	}
	return fmt.Sprintf("Period(%d)", int(p))
}

// Valid reports whether p is one of the known periods.
func (p Period) Valid() bool {
	return p.Label() != ""
}

// ParsePeriod maps a display label back to its Period. Matching ignores case and surrounding space.
func ParsePeriod(label string) (Period, error) {
	label = strings.TrimSpace(label)
	for p := PeriodRenaissance; int(p) < len(periodLabels); p++ {
		if strings.EqualFold(periodLabels[p], label) {
			return p, nil
		}
	}
	return PeriodUnknown, fmt.Errorf("%w: %q", ErrUnknownPeriod, label)
}

func (p Period) MarshalJSON() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPeriod, int(p))
	}
	return json.Marshal(p.Label())
}

func (p *Period) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return err
	}
	parsed, err := ParsePeriod(label)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
