package game

// Stepper computes the step after prev.
type Stepper interface {
	Step(prev SimulationStep) (SimulationStep, StepReport)
}

// Timeline retains computed steps and a cursor over them. Moving back and
// forth over retained steps is a cursor move; only moving past the latest
// step computes a new one.
type Timeline struct {
	steps  []SimulationStep
	cursor int
	limit  int // 0 keeps everything
}

// NewTimeline starts a timeline at first. limit caps how many steps are
// retained; the oldest are discarded first. 0 means unlimited.
func NewTimeline(first SimulationStep, limit int) *Timeline {
	return &Timeline{steps: []SimulationStep{first}, limit: limit}
}

// Current returns the step under the cursor.
func (t *Timeline) Current() SimulationStep {
	return t.steps[t.cursor]
}

// Oldest returns the oldest retained step.
func (t *Timeline) Oldest() SimulationStep {
	return t.steps[0]
}

// Latest returns the newest retained step.
func (t *Timeline) Latest() SimulationStep {
	return t.steps[len(t.steps)-1]
}

// Len returns the number of retained steps.
func (t *Timeline) Len() int {
	return len(t.steps)
}

// Cursor returns the index of the current step among retained steps.
func (t *Timeline) Cursor() int {
	return t.cursor
}

// AtLatest reports whether the cursor is on the newest step.
func (t *Timeline) AtLatest() bool {
	return t.cursor == len(t.steps)-1
}

// Forward moves the cursor one step ahead, computing a new step with s when
// the cursor is already on the latest one. The report is only meaningful
// when computed is true.
func (t *Timeline) Forward(s Stepper) (step SimulationStep, report StepReport, computed bool) {
	if !t.AtLatest() {
		t.cursor++
		return t.Current(), StepReport{}, false
	}

	next, report := s.Step(t.Latest())
	t.Append(next)
	return t.Current(), report, true
}

// Append adds a step after the latest and moves the cursor to it.
func (t *Timeline) Append(step SimulationStep) {
	t.steps = append(t.steps, step)
	if t.limit > 0 && len(t.steps) > t.limit {
		drop := len(t.steps) - t.limit
		t.steps = append(t.steps[:0:0], t.steps[drop:]...)
	}
	t.cursor = len(t.steps) - 1
}

// Back moves the cursor one step towards the oldest retained step. It
// reports false when already there.
func (t *Timeline) Back() bool {
	if t.cursor == 0 {
		return false
	}
	t.cursor--
	return true
}

// SeekStep moves the cursor to the retained step with the given number.
func (t *Timeline) SeekStep(number int64) bool {
	first := t.steps[0].Number
	i := int(number - first)
	if i < 0 || i >= len(t.steps) || t.steps[i].Number != number {
		for j := range t.steps {
			if t.steps[j].Number == number {
				t.cursor = j
				return true
			}
		}
		return false
	}
	t.cursor = i
	return true
}

// SeekIndex moves the cursor to a retained index, clamped to the valid range.
func (t *Timeline) SeekIndex(i int) {
	t.cursor = min(max(i, 0), len(t.steps)-1)
}
