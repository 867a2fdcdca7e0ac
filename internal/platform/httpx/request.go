package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/MarselKurniawan/erp-system/internal/shared"
)

// CompanyHeader carries the tenant id on every API request.
const CompanyHeader = "X-Company-ID"

// CompanyID returns the tenant resolved by the company middleware.
func CompanyID(r *http.Request) (int64, error) {
	id, ok := shared.CompanyFromContext(r.Context())
	if !ok {
		return 0, fmt.Errorf("%w: %s header required", shared.ErrValidation, CompanyHeader)
	}
	return id, nil
}

// PathInt64 parses a positive integer chi URL parameter.
func PathInt64(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", shared.ErrValidation, name, raw)
	}
	return id, nil
}

// QueryDate parses a YYYY-MM-DD query parameter, falling back to def when absent.
func QueryDate(r *http.Request, name string, def time.Time) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	t, err := shared.ParseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", name, err)
	}
	return t, nil
}

// QueryInt64s parses a repeated or comma separated integer query parameter.
func QueryInt64s(r *http.Request, name string) ([]int64, error) {
	var out []int64
	for _, raw := range r.URL.Query()[name] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid %s %q", shared.ErrValidation, name, part)
			}
			out = append(out, id)
		}
	}
	return out, nil
}

// QueryBool reports whether a query flag is set to a truthy value.
func QueryBool(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}

// FieldErrors flattens validator errors into field -> tag pairs.
// It returns nil when err is not a validation error.
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Namespace()] = fe.Tag()
	}
	return fields
}
