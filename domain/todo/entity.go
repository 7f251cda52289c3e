package todo

import "time"

// MaxTitleLength is the maximum number of characters in a title.
const MaxTitleLength = 255

// Todo is the core domain entity representing a single task.
type Todo struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Completed bool      `gorm:"not null;default:false;index" json:"completed"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for the Todo entity.
func (Todo) TableName() string {
	return "todos"
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Completed == nil
}

// Normalize validates the patch and returns a copy with a trimmed title.
func (p Patch) Normalize() (Patch, error) {
	if p.IsEmpty() {
		return p, ErrNoFields
	}
	if p.Title != nil {
		title, err := NormalizeTitle(*p.Title)
		if err != nil {
			return p, err
		}
		p.Title = &title
	}
	return p, nil
}
