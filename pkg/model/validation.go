package model

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ValidationKind classifies why form values were rejected before submit.
type ValidationKind int

const (
	// RequiredFieldMissing means at least one field is empty.
	RequiredFieldMissing ValidationKind = iota + 1
	// NotANumber means longitude or latitude is not a finite decimal.
	NotANumber
	// InvalidReference means the kelurahan id is not an integer.
	InvalidReference
)

func (k ValidationKind) String() string {
	switch k {
	case RequiredFieldMissing:
		return "RequiredFieldMissing"
	case NotANumber:
		return "NotANumber"
	case InvalidReference:
		return "InvalidReference"
	default:
		return "ValidationKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// ValidationError reports a local, pre-submit rejection. Fields lists the
// offending inputs in display order.
type ValidationError struct {
	Kind   ValidationKind
	Fields []Field
	Err    error
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, string(f))
	}
	msg := "model: validation failed: " + e.Kind.String()
	if len(names) > 0 {
		msg += " (" + strings.Join(names, ", ") + ")"
	}
	return msg
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IsValidationKind reports whether err carries a ValidationError of kind.
func IsValidationKind(err error, kind ValidationKind) bool {
	var verr *ValidationError
	return errors.As(err, &verr) && verr.Kind == kind
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func formValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		validate = v
	})
	return validate
}

// Validate runs the submit-time checks in order (required fields, decimal
// coordinates, integer kelurahan id) and returns the typed payload when all
// of them pass.
func Validate(values FormValues) (UpdatePayload, error) {
	if err := formValidator().Struct(values); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return UpdatePayload{}, fmt.Errorf("model: validate form: %w", err)
		}
		return UpdatePayload{}, &ValidationError{
			Kind:   RequiredFieldMissing,
			Fields: requiredFields(verrs),
			Err:    err,
		}
	}

	lon, lonErr := parseDecimal(values.Longitude)
	lat, latErr := parseDecimal(values.Latitude)
	if lonErr != nil || latErr != nil {
		var fields []Field
		if lonErr != nil {
			fields = append(fields, FieldLongitude)
		}
		if latErr != nil {
			fields = append(fields, FieldLatitude)
		}
		return UpdatePayload{}, &ValidationError{
			Kind:   NotANumber,
			Fields: fields,
			Err:    errors.Join(lonErr, latErr),
		}
	}

	kelurahanID, err := strconv.Atoi(strings.TrimSpace(values.KelurahanID))
	if err != nil {
		return UpdatePayload{}, &ValidationError{
			Kind:   InvalidReference,
			Fields: []Field{FieldKelurahanID},
			Err:    err,
		}
	}

	return UpdatePayload{
		Nama:            values.Nama,
		Alamat:          values.Alamat,
		Wilayah:         values.Wilayah,
		KelurahanID:     kelurahanID,
		PenanggungJawab: values.PenanggungJawab,
		NoHP:            values.NoHP,
		Akreditasi:      values.Akreditasi,
		Longitude:       lon,
		Latitude:        lat,
	}, nil
}

// CheckReference reports whether id names one of the fetched options.
func CheckReference(id string, options []KelurahanOption) bool {
	_, ok := FindOption(options, id)
	return ok
}

func parseDecimal(raw string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("model: %q is not a finite number", raw)
	}
	return f, nil
}

func requiredFields(verrs validator.ValidationErrors) []Field {
	seen := make(map[Field]struct{}, len(verrs))
	for _, fe := range verrs {
		seen[Field(fe.Field())] = struct{}{}
	}
	out := make([]Field, 0, len(seen))
	for _, f := range fieldOrder {
		if _, ok := seen[f]; ok {
			out = append(out, f)
		}
	}
	return out
}
