package todo

// Status selects which subset of todos a listing returns.
type Status string

const (
	StatusAll       Status = "all"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// ParseStatus maps a query value to a Status. Matching is exact; unknown,
// empty or differently cased values mean all.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusActive:
		return StatusActive
	case StatusCompleted:
		return StatusCompleted
	default:
		return StatusAll
	}
}

// Matches reports whether t belongs to the subset selected by s.
func (s Status) Matches(t Todo) bool {
	switch s {
	case StatusActive:
		return !t.Completed
	case StatusCompleted:
		return t.Completed
	default:
		return true
	}
}

// Filter returns the todos matching s, preserving order.
func Filter(todos []Todo, s Status) []Todo {
	out := make([]Todo, 0, len(todos))
	for _, t := range todos {
		if s.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// Counts summarises a collection by completion state.
type Counts struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
}

// Count tallies todos by completion state.
func Count(todos []Todo) Counts {
	c := Counts{Total: len(todos)}
	for _, t := range todos {
		if t.Completed {
			c.Completed++
		} else {
			c.Active++
		}
	}
	return c
}
