// Package classifier wraps the pretrained image-classification model behind
// a small adapter. The model itself runs in a separate model server; the
// adapter posts the image for a forward pass, receives the argmax class
// index, and maps it to a label through the model's own index-to-label
// table, which is fetched once and shared read-only across requests.
package classifier

import (
	"context"
)

// UnknownLabel is returned when the predicted class index has no entry in
// the model's index-to-label table.
const UnknownLabel = "Unknown Condition"

// Prediction is the outcome of a single forward pass.
type Prediction struct {
	// Index is the argmax class index produced by the model.
	Index int

	// Label is the human-readable name for Index, or UnknownLabel when the
	// index is absent from the model's table.
	Label string

	// Confidence is the model's score for the predicted class. It is
	// reported but not persisted anywhere.
	Confidence float64
}

// Classifier predicts a disease label for an uploaded image.
type Classifier interface {
	Predict(ctx context.Context, image []byte, contentType string) (Prediction, error)
}
