package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/palmdb/pkg/pdb"
)

const mimeOctetStream = "application/octet-stream"

// ErrorBody is the payload of every error response.
type ErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg)
}

func writeNotFound(c *echo.Context, msg string) error {
	return writeError(c, http.StatusNotFound, "not_found_error", msg)
}

func writeError(c *echo.Context, status int, errType, msg string) error {
	return c.JSON(status, map[string]any{
		"error": ErrorBody{
			Message: msg,
			Type:    errType,
		},
	})
}

// codecStatus maps codec and request errors onto an HTTP status and error
// type.
func codecStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "too_large_error"
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, "invalid_request_error"
	case errors.Is(err, pdb.ErrTruncatedContainer), errors.Is(err, pdb.ErrMissingDecoder):
		return http.StatusUnprocessableEntity, "invalid_container_error"
	case errors.Is(err, pdb.ErrEncodingFailure):
		return http.StatusUnprocessableEntity, "encoding_error"
	default:
		return http.StatusInternalServerError, "server_error"
	}
}

// writeCodecError writes err and returns the status it used.
func writeCodecError(c *echo.Context, err error) (int, error) {
	status, errType := codecStatus(err)
	return status, writeError(c, status, errType, err.Error())
}

// readBody reads at most limit bytes from r. A longer body is ErrTooLarge.
func readBody(r io.Reader, limit int64) ([]byte, error) {
	if r == nil {
		return nil, newInvalidRequest("request body is required")
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, limit)
	}
	if len(data) == 0 {
		return nil, newInvalidRequest("request body is empty")
	}
	return data, nil
}

// parseIndex parses a non-negative record index path parameter.
func parseIndex(raw string) (int, error) {
	i, err := strconv.Atoi(raw)
	if err != nil || i < 0 {
		return 0, newInvalidRequest(fmt.Sprintf("record index %q must be a non-negative integer", raw))
	}
	return i, nil
}

// parseLimit parses the optional "limit" query parameter. Empty means no
// limit.
func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, newInvalidRequest(fmt.Sprintf("limit %q must be a non-negative integer", raw))
	}
	return n, nil
}

func newDatabaseID() string {
	return "pdb_" + uuid.NewString()
}
