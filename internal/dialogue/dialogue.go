// Package dialogue holds the small state Joey carries across turns and the
// extraction of the user's own name.
package dialogue

import (
	"github.com/nadzzz/joey/internal/lang"
)

// State is the per-process conversation record. The zero value is the
// start state: base language, unknown name. It is not safe for concurrent
// use; the dispatcher serialises turns.
type State struct {
	// ActiveLanguage is the language mode; empty means the base language.
	ActiveLanguage lang.Code
	// UserName is empty until the user introduces themselves.
	UserName string
}

// ResponseLanguage is the language replies are rendered in.
func (s *State) ResponseLanguage() lang.Code {
	return s.ActiveLanguage.Or(lang.Base)
}

// SetLanguage activates a language mode. Setting the base language clears
// the mode.
func (s *State) SetLanguage(code lang.Code) {
	if code == lang.Base {
		code = ""
	}
	s.ActiveLanguage = code
}

// ClearLanguage returns to the base language.
func (s *State) ClearLanguage() {
	s.ActiveLanguage = ""
}

// Snapshot is a copy of State for reporting.
type Snapshot struct {
	ActiveLanguage lang.Code `json:"active_language,omitempty"`
	UserName       string    `json:"user_name,omitempty"`
}

// Snapshot returns a copy of the state.
func (s *State) Snapshot() Snapshot {
	return Snapshot{ActiveLanguage: s.ActiveLanguage, UserName: s.UserName}
}
