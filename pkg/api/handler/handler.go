package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-logr/logr"

	"github.com/noticehub/noticehub/pkg/types"
)

type JSONFunc func(r *http.Request) (any, error)

func (f JSONFunc) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l := logr.FromContextOrDiscard(r.Context())
	start := time.Now()
	statusCode := http.StatusOK
	defer func() {
		l.Info("Request completed", "duration", time.Since(start), "status", statusCode)
	}()

	result, err := f(r)
	if err != nil {
		statusCode = StatusFor(err)
		http.Error(w, err.Error(), statusCode)
		l.Error(err, "Failed to process request", "status", statusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json")

	if rwc, ok := result.(ResponseWithCode); ok {
		statusCode = rwc.Code
		w.WriteHeader(rwc.Code)
		result = rwc.Data
	} else if rwc, ok := result.(*ResponseWithCode); ok {
		statusCode = rwc.Code
		w.WriteHeader(rwc.Code)
		result = rwc.Data
	}

	// We can't return any error as the response might be already partially written
	if err := json.NewEncoder(w).Encode(result); err != nil {
		l.Error(err, "Failed to write response")
	}
}

// StatusFor maps the core error taxonomy onto HTTP status codes. Errors
// carrying an explicit code win; unknown identifiers map to 404, rejected
// intervals to 400, everything else is a 500.
func StatusFor(err error) int {
	cr := ErrWithCode{}
	if errors.As(err, &cr) {
		return cr.Code
	}
	var unknownNode *types.UnknownNodeError
	var unknownEvent *types.UnknownEventError
	var invalidInterval *types.InvalidIntervalError
	switch {
	case errors.As(err, &unknownNode), errors.As(err, &unknownEvent):
		return http.StatusNotFound
	case errors.As(err, &invalidInterval):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type ErrWithCode struct {
	Err  error
	Code int
}

func (e ErrWithCode) Unwrap() error {
	return e.Err
}

func (e ErrWithCode) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Err.Error())
}

func NewErrWithCode(err error, code int) ErrWithCode {
	return ErrWithCode{
		Err:  err,
		Code: code,
	}
}

type ResponseWithCode struct {
	Data any
	Code int
}
