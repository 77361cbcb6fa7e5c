// Package controls maps single key presses onto the runtime settings of the
// smoke mirror.
package controls

import (
	"errors"
	"fmt"
)

// ErrInvalidOption reports an option that cannot be constructed.
var ErrInvalidOption = errors.New("controls: invalid option")

// CycleOption steps through a fixed list of choices on one key, wrapping
// after the last.
type CycleOption struct {
	name    string
	key     rune
	options []string
	current int
}

// NewCycleOption returns an option starting at options[current].
func NewCycleOption(name string, key rune, options []string, current int) (*CycleOption, error) {
	if len(options) == 0 {
		return nil, fmt.Errorf("%w: %s has no choices", ErrInvalidOption, name)
	}
	if current < 0 || current >= len(options) {
		return nil, fmt.Errorf("%w: %s start %d outside 0..%d", ErrInvalidOption, name, current, len(options)-1)
	}
	return &CycleOption{name: name, key: key, options: options, current: current}, nil
}

// Poll advances the option if r is its key and reports whether it did.
func (o *CycleOption) Poll(r rune) bool {
	if r != o.key {
		return false
	}
	o.current = (o.current + 1) % len(o.options)
	return true
}

// Current returns the index of the selected choice.
func (o *CycleOption) Current() int { return o.current }

// Value returns the selected choice.
func (o *CycleOption) Value() string { return o.options[o.current] }

// String renders the option as Name(key)=choice.
func (o *CycleOption) String() string {
	return fmt.Sprintf("%s(%c)=%s", o.name, o.key, o.options[o.current])
}

// RangeOption is a number moved down and up by a fixed step on two keys and
// clamped to a closed range.
type RangeOption struct {
	name     string
	keys     [2]rune
	min, max float64
	step     float64
	current  float64
}

// NewRangeOption returns an option over [bounds[0], bounds[1]]. keys[0]
// decrements and keys[1] increments. current is clamped into range.
func NewRangeOption(name string, keys []rune, bounds []float64, step, current float64) (*RangeOption, error) {
	if len(keys) != 2 {
		return nil, fmt.Errorf("%w: %s needs 2 keys, got %d", ErrInvalidOption, name, len(keys))
	}
	if len(bounds) != 2 {
		return nil, fmt.Errorf("%w: %s needs 2 bounds, got %d", ErrInvalidOption, name, len(bounds))
	}
	if bounds[0] > bounds[1] {
		return nil, fmt.Errorf("%w: %s range [%g, %g] is empty", ErrInvalidOption, name, bounds[0], bounds[1])
	}
	if step <= 0 {
		return nil, fmt.Errorf("%w: %s step %g", ErrInvalidOption, name, step)
	}
	return &RangeOption{
		name:    name,
		keys:    [2]rune{keys[0], keys[1]},
		min:     bounds[0],
		max:     bounds[1],
		step:    step,
		current: max(min(current, bounds[1]), bounds[0]),
	}, nil
}

// Poll moves the value if r is one of the option's keys and reports whether
// it did.
func (o *RangeOption) Poll(r rune) bool {
	switch r {
	case o.keys[0]:
		o.current = max(o.current-o.step, o.min)
	case o.keys[1]:
		o.current = min(o.current+o.step, o.max)
	default:
		return false
	}
	return true
}

// Current returns the value.
func (o *RangeOption) Current() float64 { return o.current }

// String renders the option as Name(down/up)=value with two decimals.
func (o *RangeOption) String() string {
	return fmt.Sprintf("%s(%c/%c)=%.2f", o.name, o.keys[0], o.keys[1], o.current)
}
