package handler

import (
	"errors"
	"net/http"

	"artgen/internal/app/apperr"
	"artgen/internal/app/logger"
	"artgen/internal/app/service/generate"
)

type ImageHandler struct {
	generator *generate.Service
}

func NewImageHandler(generator *generate.Service) *ImageHandler {
	return &ImageHandler{generator: generator}
}

// Generate renders the prompt for one credit.
func (h *ImageHandler) Generate(w http.ResponseWriter, r *http.Request) {
	log := logger.Get(r.Context(), "Handler.Image.Generate")

	userID, err := ReadContextUserID(r.Context())
	if err != nil {
		WriteError(w, err, http.StatusUnauthorized)
		return
	}

	in := struct {
		Prompt string `json:"prompt" validate:"required,min=1,max=1000"`
	}{}

	if err := readBody(r, &in); err != nil {
		WriteError(w, err, http.StatusBadRequest)
		return
	}

	if !validateData(w, in) {
		return
	}

	asset, err := h.generator.Spend(r.Context(), userID, in.Prompt)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrInsufficientCredit):
			log.Debug().Err(err).Send()
			WriteError(w, errors.New("no credit balance"), http.StatusPaymentRequired)
		case errors.Is(err, apperr.ErrNotFound):
			WriteError(w, errors.New("user not found"), http.StatusNotFound)
		case errors.Is(err, apperr.ErrUpstream):
			log.Error().Err(err).Send()
			WriteError(w, errors.New("image generation failed"), http.StatusBadGateway)
		default:
			log.Error().Err(err).Send()
			WriteError(w, err, http.StatusInternalServerError)
		}
		return
	}

	out := struct {
		Success     bool   `json:"success"`
		ResultImage string `json:"resultImage"`
	}{
		Success:     true,
		ResultImage: asset,
	}

	WriteResponse(w, out, http.StatusOK)
}
