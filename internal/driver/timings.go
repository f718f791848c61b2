package driver

import (
	"encoding/json"
	"time"

	"chime/internal/diag"
)

type timingPayload struct {
	Target  string        `json:"target"`
	TotalMS float64       `json:"total_ms"`
	Phases  []phaseTiming `json:"phases"`
}

// report appends an informational timing diagnostic with the raw
// payload attached as a machine-readable note.
func (t *timings) report(bag *diag.Bag, target string) {
	if bag == nil {
		return
	}
	payload := timingPayload{
		Target:  target,
		TotalMS: float64(time.Since(t.start).Microseconds()) / 1000,
		Phases:  t.phases,
	}
	d := diag.Infof(diag.ObsTimings, target, "timings: total %.2f ms", payload.TotalMS)
	if data, err := json.Marshal(payload); err == nil {
		d = d.WithNote(target, string(data))
	}
	bag.Add(d)
}
