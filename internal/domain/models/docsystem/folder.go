package docsystem

import (
	"time"
)

type Folder struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	ParentID  *string   `json:"parent_id" db:"parent_id"` // NULL = root level
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsRoot reports whether the folder sits at the top of its tree.
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}
