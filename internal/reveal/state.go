package reveal

import "fmt"

// State represents the current state of the reveal ceremony
type State byte

const (
	// StateIdle: nothing armed; the ceremony can be triggered.
	StateIdle State = iota
	// StateArmed: preconditions passed, sequence about to start.
	StateArmed
	// StateCounting: fixed-duration suspense interval; the ranking is frozen
	// the moment this state is entered.
	StateCounting
	// StateThird through StateFirst: podium places revealed in order.
	StateThird
	StateSecond
	StateFirst
	// StateDrawn: prize-draw winner revealed.
	StateDrawn
	// StateDone: fully revealed; re-arming requires a reset.
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArmed:
		return "armed"
	case StateCounting:
		return "counting"
	case StateThird:
		return "stage_third"
	case StateSecond:
		return "stage_second"
	case StateFirst:
		return "stage_first"
	case StateDrawn:
		return "drawn"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaler interface
func (s State) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (s *State) UnmarshalJSON(data []byte) error {
	str := string(data)
	if len(str) >= 2 && str[0] == '"' && str[len(str)-1] == '"' {
		str = str[1 : len(str)-1]
	}

	state, valid := StateFromString(str)
	if !valid {
		return fmt.Errorf("invalid reveal state: %s", str)
	}
	*s = state
	return nil
}

// StateFromString converts a string to a State
func StateFromString(s string) (State, bool) {
	switch s {
	case "idle":
		return StateIdle, true
	case "armed":
		return StateArmed, true
	case "counting":
		return StateCounting, true
	case "stage_third":
		return StateThird, true
	case "stage_second":
		return StateSecond, true
	case "stage_first":
		return StateFirst, true
	case "drawn":
		return StateDrawn, true
	case "done":
		return StateDone, true
	default:
		return StateIdle, false
	}
}

// running reports whether the state is part of an in-flight sequence.
func (s State) running() bool {
	return s >= StateArmed && s <= StateDrawn
}
