package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/ukaji3/xlread-go/internal/logging"
	"github.com/ukaji3/xlread-go/pkg/xlread"
)

// readRequest is the JSON body accepted by POST /api/workbooks.
type readRequest struct {
	Data *string `json:"data"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReadWorkbook converts a base64 workbook sent either as {"data": "..."}
// or as the raw request body.
func (s *Server) handleReadWorkbook(w http.ResponseWriter, r *http.Request) {
	body := r.Body
	if s.opts.MaxPayloadBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, s.opts.MaxPayloadBytes+envelopeAllowance)
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, xlread.ErrPayloadTooLarge.Error())
			return
		}
		writeError(w, r, http.StatusBadRequest, "failed to read request body")
		return
	}

	payload := string(raw)
	if isJSON(r) {
		var req readRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.Data == nil {
			writeError(w, r, http.StatusBadRequest, `missing "data" field`)
			return
		}
		payload = *req.Data
	}

	if !s.limit.TryAcquire() {
		w.Header().Set("Retry-After", "1")
		writeError(w, r, http.StatusTooManyRequests, "too many conversions in progress")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.RequestTimeout)
	defer cancel()

	completion := s.reader.Submit(payload)
	s.limit.ReleaseWhen(completion.Done())
	logging.FromContext(r.Context()).Debug("conversion submitted", "invocation_id", completion.ID())

	result, err := completion.WaitContext(ctx)
	switch {
	case err == nil:
		writeJSON(w, r, http.StatusOK, result)
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, r, http.StatusGatewayTimeout, "conversion timed out")
	case errors.Is(err, context.Canceled):
		// Client went away; nothing left to write to.
	case errors.Is(err, xlread.ErrPayloadTooLarge):
		writeError(w, r, http.StatusRequestEntityTooLarge, err.Error())
	default:
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	}
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	logging.FromContext(r.Context()).Warn("request failed", "status", status, "error", message)
	writeJSON(w, r, status, ErrorResponse{Message: message})
}

// writeJSON encodes v before sending any header, so an unencodable value
// becomes a 500 rather than a truncated success.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
		status = http.StatusInternalServerError
		buf.Reset()
		buf.WriteString(`{"message":"failed to encode response"}` + "\n")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logging.FromContext(r.Context()).Debug("response write failed", "error", err)
	}
}
