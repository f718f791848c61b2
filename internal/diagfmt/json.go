package diagfmt

import (
	"encoding/json"
	"io"

	"chime/internal/diag"
)

type jsonNote struct {
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
}

type jsonDiagnostic struct {
	Severity string     `json:"severity"`
	Code     string     `json:"code"`
	Title    string     `json:"title"`
	Subject  string     `json:"subject,omitempty"`
	Message  string     `json:"message"`
	Notes    []jsonNote `json:"notes,omitempty"`
}

// JSON writes the bag as a JSON array, one object per diagnostic.
func JSON(w io.Writer, bag *diag.Bag) error {
	out := make([]jsonDiagnostic, 0, bag.Len())
	for _, d := range bag.Items() {
		jd := jsonDiagnostic{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Title:    d.Code.Title(),
			Subject:  d.Subject,
			Message:  d.Message,
		}
		for _, n := range d.Notes {
			jd.Notes = append(jd.Notes, jsonNote{Subject: n.Subject, Message: n.Msg})
		}
		out = append(out, jd)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
