package model

// Outcome is the result of a battle started from an overworld encounter.
type Outcome uint8

const (
	OutcomeCancelled Outcome = iota
	OutcomeCaptured
	OutcomeFainted
	OutcomeFled
)

// String returns outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeCaptured:
		return "captured"
	case OutcomeFainted:
		return "fainted"
	case OutcomeFled:
		return "fled"
	default:
		return "cancelled"
	}
}
