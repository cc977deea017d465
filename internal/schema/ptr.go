package schema

// Int returns a pointer to v, for populating optional numeric fields.
func Int(v int) *int { return &v }

// Bool returns a pointer to v, for populating optional flags.
func Bool(v bool) *bool { return &v }
