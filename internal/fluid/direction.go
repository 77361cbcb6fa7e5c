package fluid

import "fmt"

// Direction selects the flow axis and sign. Directions 0 and 2 flow along
// axis 0, 1 and 3 along axis 1; 0 and 1 flow towards increasing index, 2
// and 3 towards decreasing index.
type Direction int

const (
	DirectionPosX Direction = iota
	DirectionPosY
	DirectionNegX
	DirectionNegY
)

// NumDirections is the number of valid directions.
const NumDirections = 4

// ParseDirection validates a raw direction code.
func ParseDirection(v int) (Direction, error) {
	d := Direction(v)
	if !d.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidDirection, v)
	}
	return d, nil
}

func (d Direction) Valid() bool { return d >= 0 && d < NumDirections }

// Axis returns the flow axis: 0 for directions {0,2}, 1 for {1,3}.
func (d Direction) Axis() int { return int(d) % 2 }

// Sign returns +1 for directions {0,1} and -1 for {2,3}.
func (d Direction) Sign() float64 {
	if d >= 2 {
		return -1
	}
	return 1
}

func (d Direction) String() string {
	switch d {
	case DirectionPosX:
		return "+x"
	case DirectionPosY:
		return "+y"
	case DirectionNegX:
		return "-x"
	case DirectionNegY:
		return "-y"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}
