package dto

import "encoding/json"

const (
	LabelStatusSuccess = "success"
	LabelStatusSkipped = "skipped"
)

// LabelResult is returned by the label analyzer. A skipped result only
// carries status, reason and key on the wire.
type LabelResult struct {
	Status     string   `json:"status"`
	Reason     string   `json:"reason,omitempty"`
	Key        string   `json:"key"`
	Labels     []string `json:"labels,omitempty"`
	Confidence string   `json:"confidence,omitempty"`
}

func (r LabelResult) MarshalJSON() ([]byte, error) {
	if r.Status == LabelStatusSkipped {
		return json.Marshal(struct {
			Status string `json:"status"`
			Reason string `json:"reason"`
			Key    string `json:"key"`
		}{r.Status, r.Reason, r.Key})
	}

	labels := r.Labels
	if labels == nil {
		labels = []string{}
	}
	return json.Marshal(struct {
		Status     string   `json:"status"`
		Labels     []string `json:"labels"`
		Key        string   `json:"key"`
		Confidence string   `json:"confidence"`
	}{r.Status, labels, r.Key, r.Confidence})
}
