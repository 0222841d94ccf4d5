package engine

import (
	"fmt"
	"strconv"
	"time"
)

// Limits bounds a single search. At least one field must be set.
type Limits struct {
	Depth          int
	MoveTimeMillis int
	NodeCap        int
}

func (l Limits) Validate() error {
	if l.Depth < 0 {
		return fmt.Errorf("depth must be >= 0: %d", l.Depth)
	}
	if l.MoveTimeMillis < 0 {
		return fmt.Errorf("move time must be >= 0: %d", l.MoveTimeMillis)
	}
	if l.NodeCap < 0 {
		return fmt.Errorf("node cap must be >= 0: %d", l.NodeCap)
	}
	if l.Depth == 0 && l.MoveTimeMillis == 0 && l.NodeCap == 0 {
		return fmt.Errorf("no search limits specified")
	}
	return nil
}

func buildGoTokens(l Limits) ([]string, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	args := []string{"go"}
	if l.Depth > 0 {
		args = append(args, "depth", strconv.Itoa(l.Depth))
	}
	if l.MoveTimeMillis > 0 {
		args = append(args, "movetime", strconv.Itoa(l.MoveTimeMillis))
	}
	if l.NodeCap > 0 {
		args = append(args, "nodes", strconv.Itoa(l.NodeCap))
	}
	return args, nil
}

// computeSearchTimeout bounds the wait for a bestmove line. The engine is
// expected to answer well within this; a caller context with an earlier
// deadline still wins.
func computeSearchTimeout(l Limits) time.Duration {
	if l.MoveTimeMillis > 0 {
		return 3*time.Duration(l.MoveTimeMillis)*time.Millisecond + 2*time.Second
	}
	if l.Depth > 0 {
		base := time.Duration(l.Depth) * 500 * time.Millisecond
		if base < 8*time.Second {
			base = 8 * time.Second
		}
		if base > 30*time.Second {
			base = 30 * time.Second
		}
		return base
	}
	return 8 * time.Second
}
