package rest

import (
	"errors"
	"io"
	"net/http"

	"suitup-be/internal/apperr"
	"suitup-be/internal/tryon"
)

const (
	maxUploadSize = 10 << 20
	// multipartSlack leaves room for boundaries and the other form fields.
	multipartSlack = 1 << 20
)

type uploadResponse struct {
	Message string `json:"message"`
	URL     string `json:"url"`
}

type tryOnResponse struct {
	ResultImageURL string `json:"resultImageUrl"`
}

func parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+multipartSlack)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperr.Invalid("File exceeds the 10 MiB limit.")
		}
		return apperr.Wrap(apperr.KindInvalidRequest, "Invalid multipart form.", err)
	}
	return nil
}

// POST /upload
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r); err != nil {
		respondError(w, r, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, apperr.Invalid("No file provided."))
		return
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		respondError(w, r, apperr.Invalid("File exceeds the 10 MiB limit."))
		return
	}

	url, err := h.uploader.Upload(r.Context(), header.Filename, file)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, uploadResponse{Message: "Upload successful", URL: url})
}

// POST /tryon
func (h *Handler) TryOn(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r); err != nil {
		respondError(w, r, err)
		return
	}

	input := tryon.Input{GarmentImageURL: r.FormValue("productImage")}

	file, header, err := r.FormFile("userImage")
	if err == nil {
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			respondError(w, r, apperr.Wrap(apperr.KindInvalidRequest, "Could not read user image.", err))
			return
		}
		input.UserImage = data
		input.MimeType = header.Header.Get("Content-Type")
		if input.MimeType == "" || input.MimeType == "application/octet-stream" {
			input.MimeType = http.DetectContentType(data)
		}
	}

	resultURL, err := h.tryon.Run(r.Context(), input)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, tryOnResponse{ResultImageURL: resultURL})
}
