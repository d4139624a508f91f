// Package bind decodes and validates HTTP request bodies.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/reflaxess123/obedi/config"
	"github.com/reflaxess123/obedi/pkg/validate"
)

// ErrFileMissing is returned by File when the form has no such field.
var ErrFileMissing = errors.New("file is required")

// maxBodyBytes returns the configured request body size limit (default 1 MB).
func maxBodyBytes() int64 {
	n, err := strconv.ParseInt(config.Get("MAX_BODY_BYTES", "1048576"), 10, 64)
	if err != nil || n <= 0 {
		return 1 << 20
	}
	return n
}

// JSON decodes r.Body as JSON into dest and runs validation.
// Returns (errs, nil) when there are validation failures and (nil, err) when
// the body is malformed or too large.
func JSON(w http.ResponseWriter, r *http.Request, dest interface{}) (errs map[string]string, err error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes())

	dec := json.NewDecoder(r.Body)
	if err = dec.Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return nil, fmt.Errorf("request body too large (max %d bytes)", maxErr.Limit)
		case errors.Is(err, io.EOF):
			return nil, errors.New("request body is empty")
		}
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	errs = validate.Struct(dest)
	if validate.HasErrors(errs) {
		return errs, nil
	}

	return nil, nil
}

// TooLargeError reports an upload over the size limit.
type TooLargeError struct{ Limit int64 }

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("file too large (max %d bytes)", e.Limit)
}

// File reads the multipart field into memory, refusing anything above limit.
func File(w http.ResponseWriter, r *http.Request, field string, limit int64) ([]byte, *multipart.FileHeader, error) {
	// room for the multipart framing around the file itself
	r.Body = http.MaxBytesReader(w, r.Body, limit+64<<10)

	f, hdr, err := r.FormFile(field)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, nil, &TooLargeError{Limit: limit}
		}
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, ErrFileMissing
		}
		return nil, nil, fmt.Errorf("invalid multipart form: %w", err)
	}
	defer f.Close()

	if hdr.Size > limit {
		return nil, nil, &TooLargeError{Limit: limit}
	}

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, nil, &TooLargeError{Limit: limit}
	}
	return data, hdr, nil
}
