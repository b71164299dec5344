// Package ticket contains the pure ticket-number grammar.
// This is part of the Functional Core - no I/O, only pure functions.
package ticket

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrSeriesExhausted is returned once a series has issued its last fixed-width number.
var ErrSeriesExhausted = errors.New("ticket series exhausted")

// Kind is the closed set of entity kinds a ticket can identify.
type Kind int

const (
	KindUnknown Kind = iota
	KindPerson
	KindVehicle
	KindImportPermit
	KindCompanyRegistration
	KindPermit
)

// Kinds lists every resolvable kind. Dispatch tables are checked against it.
func Kinds() []Kind {
	return []Kind{KindPerson, KindVehicle, KindImportPermit, KindCompanyRegistration, KindPermit}
}

func (k Kind) String() string {
	switch k {
	case KindPerson:
		return "Foreigner"
	case KindVehicle:
		return "Vehicle"
	case KindImportPermit:
		return "ImportPermit"
	case KindCompanyRegistration:
		return "CompanyRegistration"
	case KindPermit:
		return "Permit"
	}
	return "Unknown"
}

// Prefix is the part of a ticket number before the first dash.
type Prefix string

const (
	PrefixPerson              Prefix = "FOR"
	PrefixVehicle             Prefix = "VEH"
	PrefixImportPermit        Prefix = "IMP"
	PrefixCompanyRegistration Prefix = "CMP"

	PrefixWorkPermit     Prefix = "WRK"
	PrefixResidenceID    Prefix = "RES"
	PrefixMedicalLicense Prefix = "LIC"
	PrefixPIP            Prefix = "PIP"
	PrefixCustoms        Prefix = "CUS"
	PrefixCarBolo        Prefix = "BOL"
)

var prefixKinds = map[Prefix]Kind{
	PrefixPerson:              KindPerson,
	PrefixVehicle:             KindVehicle,
	PrefixImportPermit:        KindImportPermit,
	PrefixCompanyRegistration: KindCompanyRegistration,
	PrefixWorkPermit:          KindPermit,
	PrefixResidenceID:         KindPermit,
	PrefixMedicalLicense:      KindPermit,
	PrefixPIP:                 KindPermit,
	PrefixCustoms:             KindPermit,
	PrefixCarBolo:             KindPermit,
}

// KindOf returns the kind served by a prefix, or KindUnknown.
func KindOf(p Prefix) Kind {
	return prefixKinds[p]
}

// EntityPrefix returns the prefix for a non-permit entity kind.
func EntityPrefix(k Kind) (Prefix, bool) {
	switch k {
	case KindPerson:
		return PrefixPerson, true
	case KindVehicle:
		return PrefixVehicle, true
	case KindImportPermit:
		return PrefixImportPermit, true
	case KindCompanyRegistration:
		return PrefixCompanyRegistration, true
	}
	return "", false
}

// Series identifies one independently sequenced namespace.
// Entity kinds have a single series per prefix; permit prefixes have one per year.
type Series struct {
	Prefix Prefix
	Year   int // zero for entity kinds
}

// EntitySeries returns the series for an entity kind.
func EntitySeries(k Kind) (Series, error) {
	p, ok := EntityPrefix(k)
	if !ok {
		return Series{}, fmt.Errorf("kind %s has no entity series", k)
	}
	return Series{Prefix: p}, nil
}

// PermitSeries returns the yearly series for a permit prefix.
func PermitSeries(p Prefix, year int) (Series, error) {
	if KindOf(p) != KindPermit {
		return Series{}, fmt.Errorf("prefix %s is not a permit prefix", p)
	}
	if year < 1000 || year > 9999 {
		return Series{}, fmt.Errorf("year %d out of range", year)
	}
	return Series{Prefix: p, Year: year}, nil
}

// Scope is the storage key distinguishing yearly series under one prefix.
func (s Series) Scope() string {
	if s.Year == 0 {
		return ""
	}
	return strconv.Itoa(s.Year)
}

// Max returns the largest sequence value that fits the series' fixed width.
func (s Series) Max() int {
	if s.Year == 0 {
		return 999999
	}
	return 9999
}

// Format renders the ticket number for a sequence value.
// Entity kinds: FOR-000100. Permit categories: WRK-2026-0100.
func (s Series) Format(seq int) string {
	if s.Year == 0 {
		return fmt.Sprintf("%s-%06d", s.Prefix, seq)
	}
	return fmt.Sprintf("%s-%04d-%04d", s.Prefix, s.Year, seq)
}

// LikePattern returns an SQL LIKE pattern matching every ticket in the series.
func (s Series) LikePattern() string {
	if s.Year == 0 {
		return string(s.Prefix) + "-%"
	}
	return fmt.Sprintf("%s-%04d-%%", s.Prefix, s.Year)
}

// String implements fmt.Stringer.
func (s Series) String() string {
	if s.Year == 0 {
		return string(s.Prefix)
	}
	return fmt.Sprintf("%s-%04d", s.Prefix, s.Year)
}

// PrefixOf returns the substring before the first dash.
func PrefixOf(number string) Prefix {
	head, _, _ := strings.Cut(strings.TrimSpace(number), "-")
	return Prefix(strings.ToUpper(head))
}

// Parsed is a decomposed ticket number.
type Parsed struct {
	Series Series
	Kind   Kind
	Seq    int
}

// Parse decomposes a ticket number. Returns false for unknown prefixes or
// malformed numbers.
func Parse(number string) (Parsed, bool) {
	parts := strings.Split(strings.TrimSpace(number), "-")
	prefix := Prefix(strings.ToUpper(parts[0]))
	kind := KindOf(prefix)
	if kind == KindUnknown {
		return Parsed{}, false
	}

	switch {
	case kind == KindPermit && len(parts) == 3:
		year, err := strconv.Atoi(parts[1])
		if err != nil || len(parts[1]) != 4 {
			return Parsed{}, false
		}
		seq, ok := parseSeq(parts[2])
		if !ok {
			return Parsed{}, false
		}
		return Parsed{Series: Series{Prefix: prefix, Year: year}, Kind: kind, Seq: seq}, true
	case kind != KindPermit && len(parts) == 2:
		seq, ok := parseSeq(parts[1])
		if !ok {
			return Parsed{}, false
		}
		return Parsed{Series: Series{Prefix: prefix}, Kind: kind, Seq: seq}, true
	}
	return Parsed{}, false
}

// SuffixSeq extracts the trailing numeric sequence of a ticket in any format.
// Returns -1 when the suffix is not numeric.
func SuffixSeq(number string) int {
	idx := strings.LastIndex(number, "-")
	if idx < 0 {
		return -1
	}
	seq, ok := parseSeq(number[idx+1:])
	if !ok {
		return -1
	}
	return seq
}

func parseSeq(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
