package diag

import "fmt"

// Reporter is the minimal contract for phases that produce
// diagnostics. Implementations: BagReporter (collects into a Bag),
// NopReporter, MultiReporter (fan-out).
type Reporter interface {
	Report(d Diagnostic)
}

// BagReporter writes into a *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(d)
}

// NopReporter discards every diagnostic.
type NopReporter struct{}

func (NopReporter) Report(Diagnostic) {}

// MultiReporter forwards each diagnostic to every child reporter.
type MultiReporter struct{ Reporters []Reporter }

func (r MultiReporter) Report(d Diagnostic) {
	for _, child := range r.Reporters {
		if child != nil {
			child.Report(d)
		}
	}
}

// Errorf builds a SevError diagnostic.
func Errorf(code Code, subject, format string, args ...any) Diagnostic {
	return newDiag(SevError, code, subject, format, args)
}

// Warningf builds a SevWarning diagnostic.
func Warningf(code Code, subject, format string, args ...any) Diagnostic {
	return newDiag(SevWarning, code, subject, format, args)
}

// Infof builds a SevInfo diagnostic.
func Infof(code Code, subject, format string, args ...any) Diagnostic {
	return newDiag(SevInfo, code, subject, format, args)
}

func newDiag(sev Severity, code Code, subject, format string, args []any) Diagnostic {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return Diagnostic{Severity: sev, Code: code, Subject: subject, Message: msg}
}
