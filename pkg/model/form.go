package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FormValues is the editable state of the edit form. Every input is kept as
// text exactly as typed; coercion happens only in Validate.
type FormValues struct {
	Nama            string `json:"nama" validate:"required"`
	Alamat          string `json:"alamat" validate:"required"`
	Wilayah         string `json:"wilayah" validate:"required"`
	KelurahanID     string `json:"kelurahanId" validate:"required"`
	PenanggungJawab string `json:"penanggungJawab" validate:"required"`
	NoHP            string `json:"noHp" validate:"required"`
	Akreditasi      string `json:"akreditasi" validate:"required"`
	Longitude       string `json:"longitude" validate:"required"`
	Latitude        string `json:"latitude" validate:"required"`
}

// UpdatePayload is the body of PUT /api/posyandu/{id}: the full field set
// with numeric fields typed as numbers.
type UpdatePayload struct {
	Nama            string  `json:"nama"`
	Alamat          string  `json:"alamat"`
	Wilayah         string  `json:"wilayah"`
	KelurahanID     int     `json:"kelurahanId"`
	PenanggungJawab string  `json:"penanggungJawab"`
	NoHP            string  `json:"noHp"`
	Akreditasi      string  `json:"akreditasi"`
	Longitude       float64 `json:"longitude"`
	Latitude        float64 `json:"latitude"`
}

// FormValuesFromRecord maps an API record into form state. Missing values
// become empty strings and numbers are rendered as their text form.
func FormValuesFromRecord(rec Posyandu) FormValues {
	return FormValues{
		Nama:            stringOrEmpty(rec.Nama),
		Alamat:          stringOrEmpty(rec.Alamat),
		Wilayah:         stringOrEmpty(rec.Wilayah),
		KelurahanID:     numberText(rec.KelurahanID),
		PenanggungJawab: stringOrEmpty(rec.PenanggungJawab),
		NoHP:            stringOrEmpty(rec.NoHP),
		Akreditasi:      stringOrEmpty(rec.Akreditasi),
		Longitude:       numberText(rec.Longitude),
		Latitude:        numberText(rec.Latitude),
	}
}

// Get returns the current text of a field.
func (v FormValues) Get(field Field) (string, error) {
	ptr := v.ref(field)
	if ptr == nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, string(field))
	}
	return *ptr, nil
}

// Set stores value for field without validating it.
func (v *FormValues) Set(field Field, value string) error {
	ptr := v.ref(field)
	if ptr == nil {
		return fmt.Errorf("%w: %q", ErrUnknownField, string(field))
	}
	*ptr = value
	return nil
}

// Clone returns an independent copy.
func (v FormValues) Clone() FormValues {
	return v
}

// Map exposes the values keyed by JSON field name, mainly for templates.
func (v FormValues) Map() map[string]string {
	out := make(map[string]string, len(fieldOrder))
	for _, f := range fieldOrder {
		out[string(f)] = *v.ref(f)
	}
	return out
}

// EmptyFields lists the fields whose text is empty, in display order.
func (v FormValues) EmptyFields() []Field {
	var out []Field
	for _, f := range fieldOrder {
		if *v.ref(f) == "" {
			out = append(out, f)
		}
	}
	return out
}

// ref returns a pointer into v for field, or nil when the field is unknown.
// Get operates on a copy, so writes only stick through Set.
func (v *FormValues) ref(field Field) *string {
	switch field {
	case FieldNama:
		return &v.Nama
	case FieldAlamat:
		return &v.Alamat
	case FieldWilayah:
		return &v.Wilayah
	case FieldKelurahanID:
		return &v.KelurahanID
	case FieldPenanggungJawab:
		return &v.PenanggungJawab
	case FieldNoHP:
		return &v.NoHP
	case FieldAkreditasi:
		return &v.Akreditasi
	case FieldLongitude:
		return &v.Longitude
	case FieldLatitude:
		return &v.Latitude
	default:
		return nil
	}
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// numberText renders a wire number the way the dashboard shows it: integers
// without a fraction, decimals in their shortest round-trip form.
func numberText(n *json.Number) string {
	if n == nil {
		return ""
	}
	raw := strings.TrimSpace(n.String())
	if raw == "" {
		return ""
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return strconv.FormatInt(i, 10)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return raw
}
