package core

import "math"

// Retirer counts how many whole units fit into a pending remainder.
// The clocks subtract exactly units*unit from the remainder and keep the
// rest, so any implementation must return floor(pending / unit)
type Retirer interface {
	Retire(pending, unit uint32) uint32
}

// Available strategies. Divide is the default
var (
	// Divide uses the integer divide instruction
	Divide Retirer = divideRetirer{}

	// Stepped never divides; it subtracts 100-unit and 10-unit batches
	// before single units
	Stepped Retirer = NewSteppedRetirer(100, 10)
)

type divideRetirer struct{}

func (divideRetirer) Retire(pending, unit uint32) uint32 {
	return pending / unit
}

func (divideRetirer) String() string {
	return "divide"
}

// SteppedRetirer retires units by repeated subtraction, for cores without a
// hardware divider. Larger batches only reduce the number of iterations
type SteppedRetirer struct {
	batches []uint32
}

// NewSteppedRetirer creates a subtraction-only retirer that tries the given
// batch sizes in order before falling back to single units. Batches of 0 or
// 1 are ignored
func NewSteppedRetirer(batches ...uint32) *SteppedRetirer {
	r := &SteppedRetirer{}
	for _, b := range batches {
		if b > 1 {
			r.batches = append(r.batches, b)
		}
	}
	return r
}

// Retire implements Retirer
func (r *SteppedRetirer) Retire(pending, unit uint32) uint32 {
	var n uint32
	for _, b := range r.batches {
		// Skip batches whose tick span does not fit in a word
		if unit > math.MaxUint32/b {
			continue
		}
		step := b * unit
		for pending >= step {
			pending -= step
			n += b
		}
	}
	for pending >= unit {
		pending -= unit
		n++
	}
	return n
}

func (r *SteppedRetirer) String() string {
	return "stepped"
}

// RetirerByName maps a configuration name to a strategy.
// The empty name selects Divide
func RetirerByName(name string) (Retirer, error) {
	switch name {
	case "", "divide":
		return Divide, nil
	case "stepped":
		return Stepped, nil
	}
	return nil, ErrUnknownRetirer
}
