package diag

import "fmt"

// Note attaches secondary context to a diagnostic.
type Note struct {
	Subject string
	Msg     string
}

// Diagnostic is one reported condition. Subject names the thing the
// condition is about: an entry point, a dropped binding, a record
// field path. It may be empty for pipeline-wide conditions.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Subject  string
	Message  string
	Notes    []Note
}

// WithNote returns a copy with one more note appended.
func (d Diagnostic) WithNote(subject, msg string) Diagnostic {
	d.Notes = append(d.Notes[:len(d.Notes):len(d.Notes)], Note{Subject: subject, Msg: msg})
	return d
}

// String renders the diagnostic on one line.
func (d Diagnostic) String() string {
	if d.Subject == "" {
		return fmt.Sprintf("%s [%s] %s", d.Severity, d.Code.ID(), d.Message)
	}
	return fmt.Sprintf("%s [%s] %s: %s", d.Severity, d.Code.ID(), d.Subject, d.Message)
}
