package session

// Flags is the editor's per-line and per-tick state.
type Flags uint8

const (
	FlagInitialized Flags = 1 << iota
	FlagEditing
	FlagEndOfInput
	FlagDone
	FlagGenerate
	FlagRestrict
	FlagSelect
)

const stageFlags = FlagGenerate | FlagRestrict | FlagSelect

func (f Flags) has(x Flags) bool {
	return f&x != 0
}

func (f *Flags) set(x Flags) {
	*f |= x
}

func (f *Flags) clear(x Flags) {
	*f &^= x
}

func (f Flags) Initialized() bool {
	return f.has(FlagInitialized)
}

func (f Flags) Editing() bool {
	return f.has(FlagEditing)
}

func (f Flags) EndOfInput() bool {
	return f.has(FlagEndOfInput)
}

func (f Flags) Done() bool {
	return f.has(FlagDone)
}

func (f Flags) NeedsGenerate() bool {
	return f.has(FlagGenerate)
}

func (f Flags) NeedsRestrict() bool {
	return f.has(FlagRestrict)
}

func (f Flags) NeedsSelect() bool {
	return f.has(FlagSelect)
}

// State is a coarse view of the editor for diagnostics.
type State int

const (
	StateUninit State = iota
	StateInit
	StateClean
	StateNeedsGenerate
	StateNeedsSelect
	StateDone
	StateEOF
)

func (s State) String() string {
	switch s {
	case StateUninit:
		return "uninit"
	case StateInit:
		return "init"
	case StateClean:
		return "clean"
	case StateNeedsGenerate:
		return "needs_generate"
	case StateNeedsSelect:
		return "needs_select"
	case StateDone:
		return "done"
	case StateEOF:
		return "eof"
	default:
		return "unknown"
	}
}

func (f Flags) state() State {
	switch {
	case !f.Initialized():
		return StateUninit
	case f.Editing():
		switch {
		case f.NeedsGenerate():
			return StateNeedsGenerate
		case f.has(FlagRestrict | FlagSelect):
			return StateNeedsSelect
		default:
			return StateClean
		}
	case f.EndOfInput():
		return StateEOF
	case f.Done():
		return StateDone
	default:
		return StateInit
	}
}
