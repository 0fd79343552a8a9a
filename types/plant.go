package types

import "time"

// Plant represents a single completed diagnosis of an uploaded leaf image.
// Records are created once per successful upload and never modified.
type Plant struct {
	// ID is the unique identifier of the diagnosis record.
	ID int `json:"id" db:"id"`

	// FilePath is where the uploaded image was stored. For the local
	// backend this is a filesystem path, for object backends an object key.
	FilePath string `json:"file_path" db:"file_path"`

	// PredictedDisease is the label produced by the classifier, or the
	// sentinel "Unknown Condition" when the class index has no mapping.
	PredictedDisease string `json:"predicted_disease" db:"predicted_disease"`

	// DiseaseDescription is the explanatory text fetched from the
	// generative-language service. Always non-empty on a completed
	// diagnosis; a fallback string substitutes when the fetch fails or
	// yields too little text.
	DiseaseDescription string `json:"disease_description" db:"disease_description"`

	// OwnerID identifies the user who uploaded the image.
	OwnerID int `json:"owner_id" db:"owner_id"`

	// CreatedAt is the timestamp when the diagnosis was recorded.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
