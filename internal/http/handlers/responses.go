package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/hongminglow/taskboard-be/internal/http/respond"
	"github.com/hongminglow/taskboard-be/internal/service"
)

const maxBodyBytes = 1 << 20

// respondServiceError maps a service error to its status and error kind.
// Storage failures get a fixed message so internals never reach the client.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		respond.Error(w, http.StatusBadRequest, respond.KindValidation, err.Error())
	case errors.Is(err, service.ErrUnauthenticated):
		respond.Error(w, http.StatusUnauthorized, respond.KindUnauthenticated, err.Error())
	case errors.Is(err, service.ErrNotFound):
		respond.Error(w, http.StatusNotFound, respond.KindNotFound, "resource not found")
	case errors.Is(err, service.ErrConflict):
		respond.Error(w, http.StatusConflict, respond.KindConflict, err.Error())
	default:
		respond.Error(w, http.StatusInternalServerError, respond.KindStorage, "something went wrong, please try again")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		msg := "invalid JSON payload"
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.Is(err, io.EOF):
			msg = "request body is required"
		case errors.As(err, &typeErr) && typeErr.Field != "":
			msg = fmt.Sprintf("invalid value for %s", typeErr.Field)
		}
		respond.Error(w, http.StatusBadRequest, respond.KindValidation, msg)
		return false
	}
	return true
}
