package components

// ActionKind identifies a journal event.
type ActionKind uint8

const (
	ActionReproduce ActionKind = iota
	ActionEat
	ActionRespawn
)

// String returns the display name for an ActionKind.
func (k ActionKind) String() string {
	names := ActionKindNames()
	if int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// ActionKindNames returns the display names for all action kinds.
// The order matches the ActionKind constants.
func ActionKindNames() []string {
	return []string{"Reproduce", "Eat", "Respawn"}
}

// Action is one journal entry.
type Action struct {
	Kind   ActionKind
	Tick   int64
	Detail string
}

// Record appends an action, dropping the oldest entries beyond limit.
// A limit of 0 keeps everything.
func (j *Journal) Record(a Action, limit int) {
	j.Actions = append(j.Actions, a)
	if limit > 0 && len(j.Actions) > limit {
		drop := len(j.Actions) - limit
		kept := make([]Action, limit)
		copy(kept, j.Actions[drop:])
		j.Actions = kept
	}
}

// Last returns the most recent action and whether there is one.
func (j Journal) Last() (Action, bool) {
	if len(j.Actions) == 0 {
		return Action{}, false
	}
	return j.Actions[len(j.Actions)-1], true
}
