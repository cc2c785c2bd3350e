package bot

// Tuning holds the knobs shared by the built-in strategies.
type Tuning struct {
	// PassWeight is how many times a legal pass is entered among the bidding
	// alternatives, each other bid being entered once.
	PassWeight int
}

// DefaultTuning makes a bot pass most of the time while bidding.
var DefaultTuning = Tuning{PassWeight: 4}

func (t Tuning) passWeight() int {
	if t.PassWeight < 1 {
		return 1
	}
	return t.PassWeight
}
