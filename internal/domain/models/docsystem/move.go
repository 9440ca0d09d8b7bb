package docsystem

// MoveTarget is one candidate destination in the "move to folder" dialog.
type MoveTarget struct {
	Folder   Folder `json:"folder"`
	Path     string `json:"path"`
	Disabled bool   `json:"disabled"`
	Reason   string `json:"reason,omitempty"`
}

// MoveTargets lists destinations for moving one folder or document.
// Root is always a legal destination.
type MoveTargets struct {
	SubjectID   string       `json:"subject_id"`
	SubjectKind NodeKind     `json:"subject_kind"`
	Targets     []MoveTarget `json:"targets"`
	Blocked     []string     `json:"blocked"` // the folder itself and its descendants
}
