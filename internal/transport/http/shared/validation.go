package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"ems/internal/transport/http/api"
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

// Bind decodes a JSON body into dst and validates its struct tags. On failure
// it writes a 400 envelope and returns false.
func Bind(w http.ResponseWriter, r *http.Request, dst any, requestID string) bool {
	return bind(w, r, dst, requestID, false)
}

// BindOptional is Bind for endpoints whose body may be omitted entirely. An
// empty body leaves dst untouched and reports success.
func BindOptional(w http.ResponseWriter, r *http.Request, dst any, requestID string) bool {
	return bind(w, r, dst, requestID, true)
}

func bind(w http.ResponseWriter, r *http.Request, dst any, requestID string, optional bool) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return true
		}
		reason := "must be a valid JSON object"
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			reason = "is required"
		case errors.As(err, &maxErr):
			reason = fmt.Sprintf("must not exceed %d bytes", maxErr.Limit)
		}
		api.ValidationFailed(w, []api.FieldIssue{{Field: "body", Reason: reason}}, requestID)
		return false
	}
	if issues := Validate(dst); len(issues) > 0 {
		api.ValidationFailed(w, issues, requestID)
		return false
	}
	return true
}

// Validate runs struct-tag validation and returns one issue per failing field.
func Validate(v any) []api.FieldIssue {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return []api.FieldIssue{{Field: "body", Reason: err.Error()}}
	}
	issues := make([]api.FieldIssue, 0, len(errs))
	for _, fe := range errs {
		issues = append(issues, api.FieldIssue{Field: fe.Field(), Reason: reasonFor(fe)})
	}
	return issues
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "gte", "min":
		return "must be at least " + fe.Param()
	case "lte", "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	default:
		return "is invalid"
	}
}
