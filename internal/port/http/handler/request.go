package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/apperror"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/port/http/middleware"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/service"
	"github.com/go-playground/validator/v10"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
	maxJSONBody     = 1 << 20
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "is invalid"
	}
}

// validateStruct runs the struct's validate tags and maps failures to field errors.
func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.Validation(err.Error(), nil)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		ns := fe.Namespace()
		if i := strings.Index(ns, "."); i >= 0 {
			ns = ns[i+1:]
		}
		fields[ns] = fieldMessage(fe)
	}
	return apperror.Validation("request validation failed", fields)
}

// decodeJSON reads a JSON body into dst and validates it.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.Validation("request body is required", nil)
		}
		return apperror.Validation("invalid request body: "+err.Error(), nil)
	}
	return validateStruct(dst)
}

func actorOf(r *http.Request) (service.Actor, error) {
	actor, ok := middleware.ActorFrom(r.Context())
	if !ok {
		return service.Actor{}, apperror.Unauthorized("authentication required")
	}
	return actor, nil
}

func parseIntQueryParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, apperror.Field(name, "must be a non-negative integer")
	}
	return v, nil
}

func parseFloatQueryParam(r *http.Request, name string) (*float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return nil, apperror.Field(name, "must be a non-negative number")
	}
	return &v, nil
}

func parseBoolQueryParam(r *http.Request, name string) (*bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperror.Field(name, "must be true or false")
	}
	return &v, nil
}

// pagination reads page and limit, clamping limit to maxPageSize.
func pagination(r *http.Request) (int, int, error) {
	page, err := parseIntQueryParam(r, "page", 1)
	if err != nil {
		return 0, 0, err
	}
	limit, err := parseIntQueryParam(r, "limit", defaultPageSize)
	if err != nil {
		return 0, 0, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit, nil
}

// sortParam splits "field" or "-field" / "field:desc" into a key and an order.
func sortParam(r *http.Request) (string, string) {
	raw := strings.TrimSpace(r.URL.Query().Get("sort"))
	if raw == "" {
		return "", ""
	}
	if strings.HasPrefix(raw, "-") {
		return strings.TrimPrefix(raw, "-"), "desc"
	}
	if key, order, ok := strings.Cut(raw, ":"); ok {
		return key, strings.ToLower(order)
	}
	return raw, "asc"
}
