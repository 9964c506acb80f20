// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package schema decodes and validates JSON request payloads. Bind is the
// single validation step: it yields either a valid value or field errors
// keyed by JSON field name.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/innovationlab/innolab/internal/util"
)

// Errors maps a JSON field name to a human-readable message.
type Errors map[string]string

func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e[k]
	}
	return strings.Join(parts, "; ")
}

// normalizer is implemented by payloads that trim or lowercase fields
// before validation.
type normalizer interface {
	Normalize()
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	// "" on a present PATCH field asks for a slug derived from the title.
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || util.IsValidSlug(s)
	})
	_ = v.RegisterValidation("httpurl", func(fl validator.FieldLevel) bool {
		return isHTTPURL(fl.Field().String())
	})
	_ = v.RegisterValidation("mediaurl", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return isHTTPURL(s) || (strings.HasPrefix(s, "/") && !strings.HasPrefix(s, "//") && !strings.Contains(s, ".."))
	})
	return v
}

// isHTTPURL accepts "" (clears the field) or an absolute http(s) URL.
func isHTTPURL(s string) bool {
	if s == "" {
		return true
	}
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Bind decodes body into a T, normalizes it and validates it.
func Bind[T any](body io.Reader) (T, Errors) {
	var v T
	if errs := Decode(body, &v); errs != nil {
		return v, errs
	}
	if n, ok := any(&v).(normalizer); ok {
		n.Normalize()
	}
	return v, Validate(&v)
}

// Decode reads one JSON value into dst. A syntax error, an empty body or a
// non-object body leaves dst untouched, as if "{}" had been sent. A field
// of the wrong JSON type is reported against that field.
func Decode(body io.Reader, dst any) Errors {
	err := json.NewDecoder(body).Decode(dst)
	if err == nil {
		return nil
	}

	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		maxErr    *http.MaxBytesError
		timeErr   *time.ParseError
	)
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF), errors.As(err, &syntaxErr):
		return nil
	case errors.As(err, &typeErr):
		if typeErr.Field == "" {
			return nil
		}
		return Errors{typeErr.Field: fmt.Sprintf("must be of type %s", jsonKind(typeErr.Type))}
	case errors.As(err, &maxErr):
		return Errors{"body": "request body is too large"}
	case errors.As(err, &timeErr):
		return Errors{"body": "timestamps must use RFC 3339 format"}
	default:
		return Errors{"body": "invalid request body"}
	}
}

// Validate runs struct tags on v.
func Validate(v any) Errors {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Errors{"body": "invalid request body"}
	}
	out := Errors{}
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = message(fe)
		}
	}
	return out
}

func message(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required", "required_with":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if isString {
			return "must be at least " + fe.Param() + " characters"
		}
		return "must be at least " + fe.Param()
	case "max":
		if isString {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "slug":
		return "must contain only lowercase letters, numbers and single hyphens"
	case "httpurl":
		return "must be an http(s) URL"
	case "mediaurl":
		return "must be an http(s) URL or an absolute path"
	case "uuid":
		return "must be a valid id"
	default:
		return "is invalid"
	}
}

func jsonKind(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Struct:
		if t == reflect.TypeOf(time.Time{}) {
			return "timestamp"
		}
		return "object"
	default:
		return "object"
	}
}
