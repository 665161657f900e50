package dto

type AccessResult struct {
	Message string `json:"Message"`
}
