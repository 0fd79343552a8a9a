package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ch4uTR/TarimKocum/internal/classifier"
	"github.com/ch4uTR/TarimKocum/internal/storage"
	"github.com/ch4uTR/TarimKocum/types"
)

// minDescriptionLen is the shortest description accepted from the fetcher;
// anything under it is replaced by the fallback text.
const minDescriptionLen = 10

// ErrUnsupportedImageType is returned for uploads outside the JPEG/PNG
// allow-set, before any file is written or prediction attempted.
var ErrUnsupportedImageType = errors.New("unsupported image type")

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
}

// PlantRepository defines persistence operations for diagnosis records.
type PlantRepository interface {
	Create(ctx context.Context, plant types.Plant) (types.Plant, error)
	GetByIDAndOwner(ctx context.Context, id, ownerID int) (types.Plant, error)
	ListByOwner(ctx context.Context, ownerID int) ([]types.Plant, error)
}

// Describer fetches explanatory text for a disease label. Implementations
// return a message, never an error: description failures must not abort a
// diagnosis.
type Describer interface {
	Describe(ctx context.Context, diseaseName string) string
}

// DiagnosisService composes the upload pipeline:
// validate, store, predict, describe, persist. Persist failures trigger
// best-effort deletion of the stored file; describe failures degrade to a
// fallback description instead of failing the request.
type DiagnosisService struct {
	repo       PlantRepository
	files      *storage.FileStore
	classifier classifier.Classifier
	describer  Describer
	log        *slog.Logger
}

func NewDiagnosisService(
	repo PlantRepository,
	files *storage.FileStore,
	cls classifier.Classifier,
	describer Describer,
	log *slog.Logger,
) *DiagnosisService {
	return &DiagnosisService{
		repo:       repo,
		files:      files,
		classifier: cls,
		describer:  describer,
		log:        log,
	}
}

// Diagnose runs the end-to-end pipeline for one uploaded image and returns
// the persisted record.
func (s *DiagnosisService) Diagnose(ctx context.Context, ownerID int, filename, contentType string, data []byte) (types.Plant, error) {
	if _, ok := allowedImageTypes[contentType]; !ok {
		return types.Plant{}, fmt.Errorf("%w: %s", ErrUnsupportedImageType, contentType)
	}

	storedPath, err := s.files.Save(ctx, ownerID, filename, data, contentType)
	if err != nil {
		return types.Plant{}, fmt.Errorf("save image: %w", err)
	}

	prediction, err := s.classifier.Predict(ctx, data, contentType)
	if err != nil {
		s.cleanup(ctx, storedPath)
		return types.Plant{}, fmt.Errorf("predict: %w", err)
	}
	s.log.Info("predicted disease", "owner_id", ownerID, "disease", prediction.Label, "class_index", prediction.Index)

	description := s.describer.Describe(ctx, prediction.Label)
	if len(strings.TrimSpace(description)) < minDescriptionLen {
		s.log.Warn("using fallback description", "disease", prediction.Label)
		description = fallbackDescription(prediction.Label)
	}

	plant, err := s.repo.Create(ctx, types.Plant{
		FilePath:           storedPath,
		PredictedDisease:   prediction.Label,
		DiseaseDescription: description,
		OwnerID:            ownerID,
	})
	if err != nil {
		s.cleanup(ctx, storedPath)
		return types.Plant{}, fmt.Errorf("persist diagnosis: %w", err)
	}

	return plant, nil
}

// List returns all diagnosis records owned by the caller.
func (s *DiagnosisService) List(ctx context.Context, ownerID int) ([]types.Plant, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Get returns one record; a record that does not exist or belongs to
// another user reads as store.ErrNotFound.
func (s *DiagnosisService) Get(ctx context.Context, id, ownerID int) (types.Plant, error) {
	return s.repo.GetByIDAndOwner(ctx, id, ownerID)
}

func (s *DiagnosisService) cleanup(ctx context.Context, storedPath string) {
	if err := s.files.Delete(ctx, storedPath); err != nil {
		s.log.Error("failed to clean up stored image", "path", storedPath, "error", err)
	}
}

func fallbackDescription(diseaseName string) string {
	return fmt.Sprintf(
		"A condition affecting plants. The system identified this as '%s'. "+
			"Please consult a plant expert for specific advice.",
		diseaseName,
	)
}
