package core

// ChangeType defines what a Change does to the loaded settings.
type ChangeType string

const (
	// ChangeUpdate overwrites only the fields that are set.
	ChangeUpdate ChangeType = "update"
	// ChangeReset restores every field to its default.
	ChangeReset ChangeType = "reset"
)

// Change is the request built by the command line for one invocation.
// Nil fields are left untouched.
type Change struct {
	Type       ChangeType
	Effect     *string
	Speed      *int
	Brightness *int
	Color      *string
}

// IsEmpty reports whether applying c would leave the settings as they are.
func (c Change) IsEmpty() bool {
	return c.Type != ChangeReset && c.Effect == nil && c.Speed == nil && c.Brightness == nil && c.Color == nil
}
