package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/goliatone/go-storefront/internal/blob"
	"github.com/goliatone/go-storefront/internal/domain"
)

// decodeJSON reads the request body into v. Type mismatches are reported the
// same way as validation failures.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	err := dec.Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return domain.Validation(field, "must be "+article(typeErr.Type.Kind().String()))
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return domain.Validation("body", fmt.Sprintf("must be at most %d bytes", maxErr.Limit))
	}
	return domain.Validation("body", "must be valid JSON")
}

func article(kind string) string {
	switch {
	case strings.HasPrefix(kind, "int"), strings.HasPrefix(kind, "uint"), strings.HasPrefix(kind, "float"):
		return "a number"
	case kind == "bool":
		return "a boolean"
	case kind == "slice", kind == "array":
		return "an array"
	case kind == "struct", kind == "map", kind == "ptr":
		return "an object"
	}
	return "a " + kind
}

// queryInt reads a numeric query parameter. Absent parameters are zero.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.Validation(name, "must be a number")
	}
	return n, nil
}

type page struct {
	limit, offset int
	sort          domain.Sort
}

func queryPage(r *http.Request) (page, error) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		return page{}, err
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		return page{}, err
	}
	return page{limit: limit, offset: offset, sort: domain.Sort(r.URL.Query().Get("sort"))}, nil
}

// formUploads turns the files under field into blob uploads. The caller
// closes the returned files.
func formUploads(r *http.Request, field string, maxMemory int64) ([]blob.Upload, func(), error) {
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		return nil, func() {}, domain.Validation(field, "must be a multipart upload")
	}
	headers := r.MultipartForm.File[field]
	files := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}

	uploads := make([]blob.Upload, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("open upload %s: %w", h.Filename, err)
		}
		files = append(files, f)
		uploads = append(uploads, blob.Upload{
			Name:        h.Filename,
			ContentType: h.Header.Get("Content-Type"),
			Size:        h.Size,
			Body:        f,
		})
	}
	return uploads, closeAll, nil
}
