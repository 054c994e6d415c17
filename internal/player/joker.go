package player

// JokerPhase is the lifecycle of a single-use power-up within one session.
// Unused -> Pending -> Armed -> Consumed; a denied authorization falls back to Unused.
type JokerPhase int

const (
	JokerUnused JokerPhase = iota
	JokerPending
	JokerArmed
	JokerConsumed
)

func (p JokerPhase) String() string {
	switch p {
	case JokerUnused:
		return "unused"
	case JokerPending:
		return "pending"
	case JokerArmed:
		return "armed"
	case JokerConsumed:
		return "consumed"
	default:
		return "unknown"
	}
}

type joker struct {
	phase JokerPhase
	// question is the question generation the joker was armed for.
	question   int
	eliminated []string
}

func (j *joker) available() bool {
	return j.phase == JokerUnused
}

func (j *joker) armedFor(question int) bool {
	return j.phase == JokerArmed && j.question == question
}

// settle retires an armed joker once its question is over.
func (j *joker) settle() {
	if j.phase == JokerArmed {
		j.phase = JokerConsumed
		j.eliminated = nil
	}
}

func (j *joker) hides(answerID string) bool {
	for _, id := range j.eliminated {
		if id == answerID {
			return true
		}
	}
	return false
}
