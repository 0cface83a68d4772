package session

// Override substitutes a virtual line for the buffer. Point is the cursor
// within Line; a negative Point puts it at the end. A non-empty Needle is
// used for selection instead of the text of the end word.
type Override struct {
	Line   string
	Needle string
	Point  int
}

// OverrideLine installs o, or clears the current override when o is nil.
// Words and matches follow the virtual line until it is cleared, and both
// installing and clearing regenerate matches. Installing over an existing
// override is a bug in the caller and is ignored.
func (e *Editor) OverrideLine(o *Override) {
	if o != nil && e.override != nil {
		e.logger.DPanic("line is already overridden")
		return
	}
	if o == nil && e.override == nil {
		return
	}

	if o != nil {
		copied := *o
		e.override = &copied
	} else {
		e.override = nil
	}

	e.ResetGenerateMatches()
	e.needle = ""
	e.collectWords()
}

// IsLineOverridden reports whether an override is installed.
func (e *Editor) IsLineOverridden() bool {
	return e.override != nil
}
