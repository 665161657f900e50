package dto

const (
	CompareStatusMatch   = "Match"
	CompareStatusNoMatch = "No Match"
	CompareStatusError   = "Error"
)

// CompareRequest is the direct-invoke payload of the face comparator. The
// images are configuration, so it carries nothing today.
type CompareRequest struct{}

type CompareResult struct {
	Status     string   `json:"status"`
	Similarity *float32 `json:"similarity,omitempty"`
	Reason     string   `json:"reason,omitempty"`
}
