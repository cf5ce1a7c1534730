package dto

import "github.com/andreyxaxa/Print-Detection/internal/entity"

// DetectionResult is what the inference collaborator returns for one
// image: the verdict, per-class confidences, the model version that
// produced them and the annotated output image.
type DetectionResult struct {
	Status    entity.CardStatus
	Scores    entity.Scores
	Model     string
	Annotated []byte
}
