// Package permute enumerates selection tuples over an ordered list of slots
// A slot is one base URL with its ordered axes; a tuple picks one value per axis
// Enumeration is lazy: every tuple is decoded from its global index on demand,
// so nothing proportional to the size of the space is ever held in memory
// When the space is larger than the cap, indices are taken at a fixed stride across
// the whole space instead of stopping after the first cap tuples
package permute

import (
	"math/big"
	"sort"
)

// Omit marks an axis left out of a tuple
const Omit = -1

// Axis is one facet or parameter with the values it may take
type Axis struct {
	Name     string
	Values   []string
	Optional bool // adds an "omit" choice ahead of the values
	Ref      int  // caller-defined, carried through unchanged
}

// Slot is one base URL and the axes enumerated under it
type Slot struct {
	Base string
	Axes []Axis
}

// Tuple is one combination: the slot index plus one value index per axis or Omit
type Tuple struct {
	Slot  int
	Picks []int
}

// Empty reports whether the tuple selects no axis value at all
func (t Tuple) Empty() bool {
	for _, p := range t.Picks {
		if p != Omit {
			return false
		}
	}
	return true
}

// Space is an immutable, normalized combination space
type Space struct {
	slots        []Slot
	includeEmpty bool

	counts  []*big.Int
	offsets []*big.Int // offsets[i] is the global index of slot i's first tuple
	total   *big.Int
}

// New normalizes slots into a Space
// Repeated and empty values are dropped, an axis repeating an earlier axis name is dropped,
// and axes left without values are removed
// includeEmpty adds the base-only tuple to every slot that has axes
func New(slots []Slot, includeEmpty bool) *Space {
	s := &Space{
		slots:        make([]Slot, 0, len(slots)),
		includeEmpty: includeEmpty,
	}
	for _, sl := range slots {
		s.slots = append(s.slots, normalizeSlot(sl))
	}

	s.counts = make([]*big.Int, len(s.slots))
	s.offsets = make([]*big.Int, len(s.slots)+1)
	acc := new(big.Int)
	for i, sl := range s.slots {
		s.offsets[i] = new(big.Int).Set(acc)
		s.counts[i] = slotCount(sl, includeEmpty)
		acc.Add(acc, s.counts[i])
	}
	s.offsets[len(s.slots)] = new(big.Int).Set(acc)
	s.total = acc
	return s
}

func normalizeSlot(in Slot) Slot {
	out := Slot{Base: in.Base, Axes: make([]Axis, 0, len(in.Axes))}
	names := make(map[string]struct{}, len(in.Axes))
	for _, ax := range in.Axes {
		if _, dup := names[ax.Name]; dup {
			continue
		}
		vals := dedupe(ax.Values)
		if len(vals) == 0 {
			continue
		}
		names[ax.Name] = struct{}{}
		out.Axes = append(out.Axes, Axis{Name: ax.Name, Values: vals, Optional: ax.Optional, Ref: ax.Ref})
	}
	return out
}

func dedupe(vals []string) []string {
	out := make([]string, 0, len(vals))
	seen := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func radix(ax Axis) int64 {
	if ax.Optional {
		return int64(len(ax.Values)) + 1
	}
	return int64(len(ax.Values))
}

func allOptional(sl Slot) bool {
	for _, ax := range sl.Axes {
		if !ax.Optional {
			return false
		}
	}
	return true
}

func slotCount(sl Slot, includeEmpty bool) *big.Int {
	if len(sl.Axes) == 0 {
		return big.NewInt(1)
	}
	n := big.NewInt(1)
	for _, ax := range sl.Axes {
		n.Mul(n, big.NewInt(radix(ax)))
	}
	switch {
	case allOptional(sl) && !includeEmpty:
		// the all-omitted product member is the empty tuple
		n.Sub(n, big.NewInt(1))
	case !allOptional(sl) && includeEmpty:
		n.Add(n, big.NewInt(1))
	}
	return n
}

// Slots returns the normalized slots, callers must not modify them
func (s *Space) Slots() []Slot { return s.slots }

// IncludeEmpty reports whether base-only tuples are part of the space
func (s *Space) IncludeEmpty() bool { return s.includeEmpty }

// Count returns the true number of tuples in the space
func (s *Space) Count() *big.Int { return new(big.Int).Set(s.total) }

// SlotCount returns the number of tuples contributed by slot i
func (s *Space) SlotCount(i int) *big.Int { return new(big.Int).Set(s.counts[i]) }

// At decodes the tuple at global index idx, idx must be in [0, Count)
func (s *Space) At(idx *big.Int) Tuple {
	i := sort.Search(len(s.slots), func(i int) bool {
		return s.offsets[i+1].Cmp(idx) > 0
	})
	local := new(big.Int).Sub(idx, s.offsets[i])
	return Tuple{Slot: i, Picks: s.decodeLocal(s.slots[i], local)}
}

func (s *Space) decodeLocal(sl Slot, local *big.Int) []int {
	picks := make([]int, len(sl.Axes))
	for i := range picks {
		picks[i] = Omit
	}
	if len(sl.Axes) == 0 {
		return picks
	}

	k := new(big.Int).Set(local)
	if allOptional(sl) {
		if !s.includeEmpty {
			k.Add(k, big.NewInt(1))
		}
	} else if s.includeEmpty {
		if k.Sign() == 0 {
			return picks
		}
		k.Sub(k, big.NewInt(1))
	}

	// mixed radix, axis 0 most significant
	if k.IsUint64() {
		u := k.Uint64()
		for a := len(sl.Axes) - 1; a >= 0; a-- {
			r := uint64(radix(sl.Axes[a]))
			picks[a] = digitToPick(sl.Axes[a], int64(u%r))
			u /= r
		}
		return picks
	}
	d := new(big.Int)
	for a := len(sl.Axes) - 1; a >= 0; a-- {
		k.QuoRem(k, big.NewInt(radix(sl.Axes[a])), d)
		picks[a] = digitToPick(sl.Axes[a], d.Int64())
	}
	return picks
}

func digitToPick(ax Axis, d int64) int {
	if ax.Optional {
		return int(d) - 1
	}
	return int(d)
}

// Plan describes what a capped enumeration will emit
type Plan struct {
	Total     *big.Int // true size of the space
	Emit      *big.Int // tuples that will be produced
	Truncated bool     // Emit < Total, tuples are strided
}

// Plan returns the emission plan for limit; limit <= 0 means uncapped
func (s *Space) Plan(limit int) Plan {
	p := Plan{Total: s.Count(), Emit: s.Count()}
	if limit > 0 {
		l := big.NewInt(int64(limit))
		if p.Total.Cmp(l) > 0 {
			p.Emit = l
			p.Truncated = true
		}
	}
	return p
}

// Cursor walks a capped enumeration one tuple at a time
type Cursor struct {
	space *Space
	plan  Plan
	i     *big.Int
	idx   *big.Int
}

// Cursor returns a cursor over at most limit tuples; limit <= 0 means uncapped
// Uncapped or within-cap enumeration visits every tuple in index order
// Otherwise tuple i of the output is the one at global index floor(i*Total/limit)
func (s *Space) Cursor(limit int) *Cursor {
	return &Cursor{
		space: s,
		plan:  s.Plan(limit),
		i:     new(big.Int),
		idx:   new(big.Int),
	}
}

// Plan returns the plan the cursor follows
func (c *Cursor) Plan() Plan { return c.plan }

// Next returns the next tuple, ok is false once the cursor is exhausted
func (c *Cursor) Next() (t Tuple, ok bool) {
	if c.i.Cmp(c.plan.Emit) >= 0 {
		return Tuple{}, false
	}
	if c.plan.Truncated {
		c.idx.Mul(c.i, c.plan.Total)
		c.idx.Quo(c.idx, c.plan.Emit)
	} else {
		c.idx.Set(c.i)
	}
	t = c.space.At(c.idx)
	c.i.Add(c.i, big.NewInt(1))
	return t, true
}

// Each calls fn for every tuple the cursor for limit yields and stops at the first error
func (s *Space) Each(limit int, fn func(Tuple) error) error {
	c := s.Cursor(limit)
	for {
		t, ok := c.Next()
		if !ok {
			return nil
		}
		if err := fn(t); err != nil {
			return err
		}
	}
}
