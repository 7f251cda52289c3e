// Package view renders client state as text. Every function is a pure
// function of its arguments.
package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/todo-tracker/client"
	domain "github.com/example/todo-tracker/domain/todo"
	"github.com/mattn/go-runewidth"
)

// DefaultWidth is the title column width used when none is given.
const DefaultWidth = 48

var filterLabels = []struct {
	status domain.Status
	label  string
}{
	{domain.StatusAll, "All"},
	{domain.StatusActive, "Active"},
	{domain.StatusCompleted, "Completed"},
}

// RelativeDate formats created relative to now: today, yesterday, "N days
// ago" within a week, otherwise the month and day.
func RelativeDate(created, now time.Time) string {
	diff := now.Sub(created)
	if diff < 0 {
		diff = -diff
	}
	days := int(diff / (24 * time.Hour))
	switch {
	case days < 1:
		return "today"
	case days < 2:
		return "yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	default:
		return created.Format("Jan 2")
	}
}

// Row renders one todo. Titles wider than width are truncated with an
// ellipsis; shorter ones are padded so dates line up.
func Row(t domain.Todo, now time.Time, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	box := "[ ]"
	if t.Completed {
		box = "[x]"
	}
	title := runewidth.FillRight(runewidth.Truncate(t.Title, width, "…"), width)
	return fmt.Sprintf("%s %4d  %s  %s", box, t.ID, title, RelativeDate(t.CreatedAt, now))
}

// List renders the todos visible under the active filter, or a placeholder
// when there are none.
func List(st client.State, now time.Time, width int) string {
	visible := st.Visible()
	if len(visible) == 0 {
		return emptyMessage(st.Filter)
	}
	rows := make([]string, 0, len(visible))
	for _, t := range visible {
		rows = append(rows, Row(t, now, width))
	}
	return strings.Join(rows, "\n")
}

func emptyMessage(f domain.Status) string {
	switch f {
	case domain.StatusActive:
		return "No active todos"
	case domain.StatusCompleted:
		return "No completed todos"
	default:
		return "No todos yet. Add one to get started!"
	}
}

// FilterBar renders the three filters with their counts, bracketing the
// active one.
func FilterBar(st client.State) string {
	counts := st.Counts()
	byStatus := map[domain.Status]int{
		domain.StatusAll:       counts.Total,
		domain.StatusActive:    counts.Active,
		domain.StatusCompleted: counts.Completed,
	}

	parts := make([]string, 0, len(filterLabels))
	for _, f := range filterLabels {
		item := fmt.Sprintf("%s %d", f.label, byStatus[f.status])
		if f.status == st.Filter {
			item = "[" + item + "]"
		}
		parts = append(parts, item)
	}
	return strings.Join(parts, "  ")
}

// Toast renders the current notification, or "" when there is none.
func Toast(n *client.Notification) string {
	if n == nil || n.Message == "" {
		return ""
	}
	if n.Kind == client.NotificationError {
		return "✗ " + n.Message
	}
	return "✓ " + n.Message
}

// Connection renders the connection indicator.
func Connection(c client.ConnectionStatus) string {
	switch c {
	case client.ConnectionConnected:
		return "● connected"
	case client.ConnectionDisconnected:
		return "○ disconnected"
	default:
		return "◌ connecting..."
	}
}

// Busy renders the overlay text. Creating a todo has its own message.
func Busy(st client.State) string {
	switch {
	case st.AddingTodo:
		return "Adding todo..."
	case st.Loading:
		return "Working..."
	default:
		return ""
	}
}

// Render composes the whole screen.
func Render(st client.State, now time.Time, width int) string {
	var b strings.Builder

	b.WriteString(Connection(st.Connection))
	b.WriteString("\n\n")
	if st.Error != "" {
		b.WriteString("error: ")
		b.WriteString(st.Error)
		b.WriteString("\n\n")
	}
	b.WriteString(FilterBar(st))
	b.WriteString("\n")
	b.WriteString(List(st, now, width))
	b.WriteString("\n")

	for _, line := range []string{Busy(st), Toast(st.Notification)} {
		if line != "" {
			b.WriteString("\n")
			b.WriteString(line)
		}
	}
	return b.String()
}
