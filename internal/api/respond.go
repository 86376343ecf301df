package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	ferrors "github.com/matzehuels/stamboom/pkg/errors"
)

const maxBodyBytes = 1 << 20

type dataEnvelope struct {
	Data any `json:"data"`
}

type errorEnvelope struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondOK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, dataEnvelope{Data: data})
}

func respondCreated(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusCreated, dataEnvelope{Data: data})
}

// errorCode finds the code an error is reported under.
func errorCode(err error) ferrors.Code {
	var rl *ferrors.RateLimitedError
	switch {
	case errors.As(err, &rl):
		return ferrors.ErrCodeRateLimited
	case errors.Is(err, context.DeadlineExceeded):
		return ferrors.ErrCodeTimeout
	}
	if code := ferrors.GetCode(err); code != "" {
		return code
	}
	return ferrors.ErrCodeInternal
}

// respondError writes the error envelope. Internal failures are logged
// with their cause and shown to the client without it.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	code := errorCode(err)
	status := ferrors.HTTPStatus(code)
	msg := ferrors.UserMessage(err)

	logger := loggerFrom(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "code", code, "err", err)
		if code == ferrors.ErrCodeInternal {
			msg = "internal error"
		}
	} else {
		logger.Debug("request rejected", "code", code, "err", err)
	}
	writeJSON(w, status, errorEnvelope{Error: msg, Code: string(code), RequestID: requestIDFrom(r.Context())})
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return ferrors.Wrap(ferrors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}
