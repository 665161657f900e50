package dto

const (
	ActionCreate = "create"
	ActionIndex  = "index"
	ActionSearch = "search"
)

const (
	CollectionStatusSuccess   = "Success"
	CollectionStatusIndexed   = "Face Indexed"
	CollectionStatusMatch     = "MATCH CONFIRMED"
	CollectionStatusNoMatch   = "No Match Found"
	CollectionStatusError     = "Error"
	DefaultCollectionUserName = "Unknown_User"
)

type CollectionRequest struct {
	Action string `json:"action"`
	Bucket string `json:"bucket"`
	Photo  string `json:"photo"`
	// Name is optional; empty means DefaultCollectionUserName.
	Name string `json:"name,omitempty"`
}

type CollectionResult struct {
	Status     string `json:"status"`
	Msg        string `json:"msg,omitempty"`
	Reason     string `json:"reason,omitempty"`
	FaceID     string `json:"FaceId,omitempty"`
	Name       string `json:"Name,omitempty"`
	Identity   string `json:"Identity,omitempty"`
	Similarity string `json:"Similarity,omitempty"`
}
