package trimmer

import "fmt"

// ErrBucketOverflow indicates a (X,Y) bucket received more records than its
// statistically-margined capacity allows - a parameter-tuning failure, not
// a transient condition. The solve is aborted.
type ErrBucketOverflow struct {
	Side    string
	X, Y    uint32
	Round   int
	Attempt uint32
	Capacity uint32
}

func (e *ErrBucketOverflow) Error() string {
	return fmt.Sprintf("trimmer: bucket (%s,x=%d,y=%d) overflowed at round %d: %d > capacity %d",
		e.Side, e.X, e.Y, e.Round, e.Attempt, e.Capacity)
}

// ErrRenameExhausted indicates a compression round could not assign every
// surviving node a renamed id within the target bit width.
type ErrRenameExhausted struct {
	Side  string
	X, Y  uint32
	Round int
	Count int
	Limit int
}

func (e *ErrRenameExhausted) Error() string {
	return fmt.Sprintf("trimmer: rename table exhausted at (%s,x=%d,y=%d) round %d: %d survivors > limit %d",
		e.Side, e.X, e.Y, e.Round, e.Count, e.Limit)
}
