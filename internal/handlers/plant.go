package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ch4uTR/TarimKocum/internal/services"
	"github.com/ch4uTR/TarimKocum/internal/store"
)

const (
	maxMultipartMemory = 16 << 20
	maxImageBytes      = 16 << 20
	formFieldFile      = "file"
)

// PlantHandler provides HTTP handlers for the diagnosis pipeline.
type PlantHandler struct {
	diagnosisService *services.DiagnosisService
	log              *slog.Logger
}

// NewPlantHandler constructs a handler with the provided service.
func NewPlantHandler(diagnosisService *services.DiagnosisService, log *slog.Logger) *PlantHandler {
	return &PlantHandler{
		diagnosisService: diagnosisService,
		log:              log,
	}
}

// PlantRouter registers plant routes on the given router. All routes
// require authentication.
func PlantRouter(
	r chi.Router,
	diagnosisService *services.DiagnosisService,
	authMiddleware func(http.Handler) http.Handler,
	log *slog.Logger,
) {
	handler := NewPlantHandler(diagnosisService, log)

	r.Use(authMiddleware)
	r.Get("/all", handler.ListPlants)
	r.Post("/", handler.UploadImage)
	r.Get("/{plantID}", handler.GetPlant)
}

// ListPlants returns every diagnosis record owned by the caller.
func (h *PlantHandler) ListPlants(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	plants, err := h.diagnosisService.List(r.Context(), claims.UserID)
	if err != nil {
		h.log.Error("failed to list plants", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list plants")
		return
	}

	writeJSON(w, http.StatusOK, plants)
}

// GetPlant returns one diagnosis record owned by the caller. Records owned
// by other users are indistinguishable from missing ones.
func (h *PlantHandler) GetPlant(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	id, err := parsePlantID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	plant, err := h.diagnosisService.Get(r.Context(), id, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "plant not found")
			return
		}
		h.log.Error("failed to fetch plant", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch plant")
		return
	}

	writeJSON(w, http.StatusOK, plant)
}

// UploadImage accepts a multipart image, runs the diagnosis pipeline and
// returns the created record.
func (h *PlantHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile(formFieldFile)
	if err != nil {
		writeError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	data, err := readFileLimited(file, maxImageBytes)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	contentType := strings.TrimSpace(header.Header.Get("Content-Type"))

	plant, err := h.diagnosisService.Diagnose(r.Context(), claims.UserID, header.Filename, contentType, data)
	if err != nil {
		if errors.Is(err, services.ErrUnsupportedImageType) {
			writeError(w, http.StatusBadRequest, "Invalid image type. Allowed types: image/jpeg, image/png")
			return
		}
		h.log.Error("diagnosis pipeline failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to process image")
		return
	}

	writeJSON(w, http.StatusCreated, plant)
}

func parsePlantID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "plantID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid plant id")
	}
	return id, nil
}

func readFileLimited(reader io.Reader, limit int64) ([]byte, error) {
	limited := io.LimitReader(reader, limit+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, errors.New("failed to read upload")
	}
	if int64(len(data)) > limit {
		return nil, errors.New("uploaded file too large")
	}
	return data, nil
}
