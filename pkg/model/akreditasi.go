package model

import (
	"fmt"
	"strings"
)

// Akreditasi is the closed set of Posyandu accreditation tiers. Tokens are
// case-preserving and travel over the wire verbatim.
type Akreditasi string

const (
	AkreditasiParipurna       Akreditasi = "PARIPURNA"
	AkreditasiPratama         Akreditasi = "PRATAMA"
	AkreditasiMadya           Akreditasi = "MADYA"
	AkreditasiPurnama         Akreditasi = "PURNAMA"
	AkreditasiMandiri         Akreditasi = "MANDIRI"
	AkreditasiBelumAkreditasi Akreditasi = "BELUM_AKREDITASI"
)

var akreditasiValues = []Akreditasi{
	AkreditasiParipurna,
	AkreditasiPratama,
	AkreditasiMadya,
	AkreditasiPurnama,
	AkreditasiMandiri,
	AkreditasiBelumAkreditasi,
}

// AkreditasiValues returns the accreditation tokens in selector order.
func AkreditasiValues() []Akreditasi {
	out := make([]Akreditasi, len(akreditasiValues))
	copy(out, akreditasiValues)
	return out
}

// ParseAkreditasi matches raw against the closed token set. Matching is exact.
func ParseAkreditasi(raw string) (Akreditasi, error) {
	candidate := Akreditasi(strings.TrimSpace(raw))
	if candidate.IsValid() {
		return candidate, nil
	}
	return "", fmt.Errorf("model: unknown akreditasi %q", raw)
}

// IsValid reports whether a is one of the six known tokens.
func (a Akreditasi) IsValid() bool {
	for _, v := range akreditasiValues {
		if v == a {
			return true
		}
	}
	return false
}

// Label renders the token for selectors, e.g. BELUM_AKREDITASI becomes
// "BELUM AKREDITASI".
func (a Akreditasi) Label() string {
	return strings.ReplaceAll(string(a), "_", " ")
}

func (a Akreditasi) String() string {
	return string(a)
}
