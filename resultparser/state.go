package resultparser

import "fmt"

// State is the position of the Parser within a result record.
type State uint8

const (
	AwaitingTeam State = iota
	AwaitingClass
	AwaitingScore
)

func (s State) String() string {
	switch s {
	case AwaitingTeam:
		return "AWAITING_TEAM"
	case AwaitingClass:
		return "AWAITING_CLASS"
	case AwaitingScore:
		return "AWAITING_SCORE"
	}

	return fmt.Sprintf("State(%d)", uint8(s))
}
