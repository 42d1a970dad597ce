package world

import (
	"errors"
	"fmt"
	"sort"
)

type Class string

const (
	ClassStandard  Class = "standard"
	ClassSpecial   Class = "special"
	ClassOffLimits Class = "off_limits"
)

var ErrInvalidConfig = errors.New("invalid stream config")

// Layout is the zone data a policy is built from. It is plain data so it
// can come from a config file or a database table.
type Layout struct {
	OffLimits       []ChunkCoord `json:"off_limits"`
	Special         []ChunkCoord `json:"special"`
	SpecialTemplate string       `json:"special_template"`
	Pool            []string     `json:"pool"`
}

// Templates lists every template name the layout can ask for.
func (l Layout) Templates() []string {
	out := append([]string(nil), l.Pool...)
	if l.SpecialTemplate != "" {
		out = append(out, l.SpecialTemplate)
	}
	return out
}

// ZonePolicy classifies coordinates against two fixed, disjoint sets.
// It is immutable once built.
type ZonePolicy struct {
	offLimits       map[ChunkCoord]struct{}
	special         map[ChunkCoord]struct{}
	specialTemplate string
	pool            []string
}

func NewZonePolicy(l Layout) (ZonePolicy, error) {
	if len(l.Pool) == 0 {
		return ZonePolicy{}, fmt.Errorf("%w: standard pool is empty", ErrInvalidConfig)
	}
	for i, t := range l.Pool {
		if t == "" {
			return ZonePolicy{}, fmt.Errorf("%w: pool entry %d has no template", ErrInvalidConfig, i)
		}
	}
	if len(l.Special) > 0 && l.SpecialTemplate == "" {
		return ZonePolicy{}, fmt.Errorf("%w: special cells configured without a special template", ErrInvalidConfig)
	}

	p := ZonePolicy{
		offLimits:       make(map[ChunkCoord]struct{}, len(l.OffLimits)),
		special:         make(map[ChunkCoord]struct{}, len(l.Special)),
		specialTemplate: l.SpecialTemplate,
		pool:            append([]string(nil), l.Pool...),
	}
	for _, c := range l.OffLimits {
		p.offLimits[c] = struct{}{}
	}
	for _, c := range l.Special {
		if _, ok := p.offLimits[c]; ok {
			return ZonePolicy{}, fmt.Errorf("%w: cell %s is both off-limits and special", ErrInvalidConfig, c)
		}
		p.special[c] = struct{}{}
	}
	return p, nil
}

func (p ZonePolicy) Classify(c ChunkCoord) Class {
	if _, ok := p.offLimits[c]; ok {
		return ClassOffLimits
	}
	if _, ok := p.special[c]; ok {
		return ClassSpecial
	}
	return ClassStandard
}

func (p ZonePolicy) SpecialTemplate() string {
	return p.specialTemplate
}

func (p ZonePolicy) PoolSize() int {
	return len(p.pool)
}

// StandardVariant returns the pool entry at i. Callers pick i uniformly.
func (p ZonePolicy) StandardVariant(i int) Variant {
	return Variant{Kind: VariantStandard, Template: p.pool[i], PoolIndex: i}
}

func (p ZonePolicy) SpecialVariant() Variant {
	return Variant{Kind: VariantSpecial, Template: p.specialTemplate, PoolIndex: -1}
}

// Layout returns a copy of the data the policy was built from, with cells
// in a stable order.
func (p ZonePolicy) Layout() Layout {
	return Layout{
		OffLimits:       sortedCoords(p.offLimits),
		Special:         sortedCoords(p.special),
		SpecialTemplate: p.specialTemplate,
		Pool:            append([]string(nil), p.pool...),
	}
}

func sortedCoords(set map[ChunkCoord]struct{}) []ChunkCoord {
	out := make([]ChunkCoord, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	SortCoords(out)
	return out
}

// SortCoords orders coordinates by Y, then X.
func SortCoords(cs []ChunkCoord) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].Y != cs[j].Y {
			return cs[i].Y < cs[j].Y
		}
		return cs[i].X < cs[j].X
	})
}
