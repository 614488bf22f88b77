package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"artgen/internal/app/apperr"
)

// readBody into json struct
func readBody(r *http.Request, v interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	_ = r.Body.Close()
	if err != nil {
		return fmt.Errorf("body read: %w", err)
	}

	err = json.Unmarshal(body, v)
	if err != nil {
		return fmt.Errorf("json decode: %w", err)
	}

	return nil
}

type jsonError struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// WriteError writes the failure envelope every endpoint shares.
func WriteError(w http.ResponseWriter, err error, statusCode int) {
	WriteResponse(w, &jsonError{Message: err.Error()}, statusCode)
}

// WriteResponse formatted in json
func WriteResponse(w http.ResponseWriter, v interface{}, statusCode int) {
	resBody, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(resBody)
}

type ValidationErrorResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Errors  ValidationErrors `json:"errors"`
}

type ValidationErrors []ValidationError

type ValidationError struct {
	Msg   string `json:"msg"`
	Param string `json:"param"`
	Value string `json:"value"`
}

// validateData and send errors, returns true if no validation errors
func validateData(w http.ResponseWriter, v interface{}) bool {
	validate := validator.New()
	err := validate.Struct(v)
	if err != nil {
		errs := make(ValidationErrors, 0)
		for _, err := range err.(validator.ValidationErrors) {
			errs = append(errs, ValidationError{
				Msg:   err.Error(),
				Param: err.Field(),
				Value: fmt.Sprintf("%v", err.Value()),
			})
		}
		WriteResponse(w, ValidationErrorResponse{Message: "Missing Details", Errors: errs}, http.StatusBadRequest)
		return false
	}

	return true
}

// ContextKeyUserID keys the authenticated account id in the request context.
type ContextKeyUserID struct{}

func ReadContextUserID(ctx context.Context) (uuid.UUID, error) {
	v := ctx.Value(ContextKeyUserID{})
	if id, ok := v.(uuid.UUID); ok {
		return id, nil
	}

	return uuid.Nil, apperr.ErrUnauthorized
}
