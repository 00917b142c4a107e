package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/MKhiriev/field-crm/internal/logger"
	"github.com/MKhiriev/field-crm/internal/utils"
	"github.com/MKhiriev/field-crm/models"
)

const (
	maxPhotoSize      = 20 << 20
	photoFormField    = "photo"
	captionFormField  = "caption"
	multipartMemLimit = 4 << 20
)

// uploadPhoto attaches a photo to a visit. The photo comes either as a
// multipart form (photo file and optional caption) or as a JSON
// [models.Photo] with base64 data.
func (h *Handler) uploadPhoto(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	visitID, err := recordIDParam(r)
	if err != nil {
		utils.WriteError(w, err.Error(), statusFromError(err))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoSize)
	photo, err := readPhoto(r)
	if err != nil {
		log.Err(err).Str("func", "*Handler.uploadPhoto").Int64("visit_id", visitID).Msg("invalid photo upload")
		utils.WriteError(w, err.Error(), statusFromError(err))
		return
	}

	result, err := h.services.RecordService.AttachPhoto(r.Context(), visitID, photo)
	if err != nil {
		log.Err(err).Str("func", "*Handler.uploadPhoto").Int64("visit_id", visitID).Msg("error attaching photo")
		utils.WriteError(w, messageFromError(err), statusFromError(err))
		return
	}

	utils.WriteJSON(w, result, writeStatus(result, http.StatusCreated))
}

func readPhoto(r *http.Request) (models.Photo, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var photo models.Photo
		if err := json.NewDecoder(r.Body).Decode(&photo); err != nil {
			return models.Photo{}, photoError(err, ErrInvalidJSON)
		}
		return photo, nil
	}

	if err := r.ParseMultipartForm(multipartMemLimit); err != nil {
		return models.Photo{}, photoError(err, ErrNoPhotoProvided)
	}
	file, header, err := r.FormFile(photoFormField)
	if err != nil {
		return models.Photo{}, fmt.Errorf("%w: %w", ErrNoPhotoProvided, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return models.Photo{}, photoError(err, ErrNoPhotoProvided)
	}

	return models.Photo{
		Caption:  r.FormValue(captionFormField),
		FileName: header.Filename,
		Data:     data,
	}, nil
}

func photoError(err, fallback error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: limit is %d bytes", ErrPhotoTooLarge, tooLarge.Limit)
	}
	return fmt.Errorf("%w: %w", fallback, err)
}
