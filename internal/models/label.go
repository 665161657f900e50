package models

// ImageLabelRecord is one row of the image-labels table, written once per
// accepted upload.
type ImageLabelRecord struct {
	ImageID    string   `json:"image_id" dynamodbav:"ImageID" db:"image_id"`
	Bucket     string   `json:"bucket" dynamodbav:"Bucket" db:"bucket"`
	Labels     []string `json:"labels" dynamodbav:"Labels" db:"labels"`
	Confidence string   `json:"confidence" dynamodbav:"Confidence" db:"confidence"`
}
