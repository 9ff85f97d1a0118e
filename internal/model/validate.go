package model

// ValidTask reports whether a decoded task record is well-formed enough to
// trust. The same predicate gates both load and save, so the store never
// holds a record the loader would reject.
func ValidTask(t Task) bool {
	if t.ID == "" || t.Title == "" {
		return false
	}
	if !t.Column.Valid() || !t.Priority.Valid() {
		return false
	}
	return true
}

// ValidActivity reports whether a decoded activity record is well-formed.
func ValidActivity(a Activity) bool {
	if a.ID == "" || !a.Type.Valid() {
		return false
	}
	if a.Timestamp.IsZero() {
		return false
	}
	return true
}
