package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownField is returned when a form field name is not part of the
// Posyandu form.
var ErrUnknownField = errors.New("model: unknown field")

// Posyandu mirrors the entity payload returned by GET /api/posyandu/{id}.
// Every attribute is optional on the wire; absent or null values decode to
// nil and are defaulted when the form is populated. ID is kept raw: the form
// takes its identifier from the route and the API may use numeric or string
// keys.
type Posyandu struct {
	ID              json.RawMessage `json:"id,omitempty"`
	Nama            *string         `json:"nama,omitempty"`
	Alamat          *string         `json:"alamat,omitempty"`
	Wilayah         *string         `json:"wilayah,omitempty"`
	KelurahanID     *json.Number    `json:"kelurahanId,omitempty"`
	PenanggungJawab *string         `json:"penanggungJawab,omitempty"`
	NoHP            *string         `json:"noHp,omitempty"`
	Akreditasi      *string         `json:"akreditasi,omitempty"`
	Longitude       *json.Number    `json:"longitude,omitempty"`
	Latitude        *json.Number    `json:"latitude,omitempty"`
}

// KelurahanOption is one entry of the reference list backing the kelurahan
// selector (GET /api/wilayah-kerja).
type KelurahanOption struct {
	ID   int    `json:"id"`
	Nama string `json:"nama"`
}

// Field names a single input of the edit form. The string value doubles as
// the JSON key used by the API.
type Field string

const (
	FieldNama            Field = "nama"
	FieldAlamat          Field = "alamat"
	FieldWilayah         Field = "wilayah"
	FieldKelurahanID     Field = "kelurahanId"
	FieldPenanggungJawab Field = "penanggungJawab"
	FieldNoHP            Field = "noHp"
	FieldAkreditasi      Field = "akreditasi"
	FieldLongitude       Field = "longitude"
	FieldLatitude        Field = "latitude"
)

type fieldInfo struct {
	label       string
	placeholder string
}

// fieldOrder follows the layout of the edit page, top to bottom.
var fieldOrder = []Field{
	FieldNama,
	FieldAlamat,
	FieldWilayah,
	FieldPenanggungJawab,
	FieldNoHP,
	FieldLongitude,
	FieldLatitude,
	FieldKelurahanID,
	FieldAkreditasi,
}

var fieldInfos = map[Field]fieldInfo{
	FieldNama:            {label: "Nama Posyandu", placeholder: "Contoh: Posyandu Melati"},
	FieldAlamat:          {label: "Alamat", placeholder: "Contoh: Jl. Mawar No. 10"},
	FieldWilayah:         {label: "Wilayah", placeholder: "Contoh: RW 01"},
	FieldPenanggungJawab: {label: "Penanggung Jawab", placeholder: "Contoh: Aisyah"},
	FieldNoHP:            {label: "No. HP", placeholder: "Contoh: 081234567890"},
	FieldLongitude:       {label: "Longitude", placeholder: "Contoh: 107.619123"},
	FieldLatitude:        {label: "Latitude", placeholder: "Contoh: -6.903449"},
	FieldKelurahanID:     {label: "Kelurahan"},
	FieldAkreditasi:      {label: "Akreditasi"},
}

// Fields lists every form field in display order.
func Fields() []Field {
	out := make([]Field, len(fieldOrder))
	copy(out, fieldOrder)
	return out
}

// ParseField resolves a field by its JSON name.
func ParseField(name string) (Field, error) {
	f := Field(strings.TrimSpace(name))
	if _, ok := fieldInfos[f]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// Label is the human readable caption shown next to the input.
func (f Field) Label() string {
	if info, ok := fieldInfos[f]; ok {
		return info.label
	}
	return string(f)
}

// Placeholder is the example text rendered inside empty text inputs. Select
// inputs have none.
func (f Field) Placeholder() string {
	return fieldInfos[f].placeholder
}

// IsSelect reports whether the field is backed by a closed option list
// rather than free text.
func (f Field) IsSelect() bool {
	return f == FieldKelurahanID || f == FieldAkreditasi
}

func (f Field) String() string {
	return string(f)
}

// FindOption looks up the option whose id renders to the given text.
func FindOption(options []KelurahanOption, id string) (KelurahanOption, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return KelurahanOption{}, false
	}
	for _, opt := range options {
		if fmt.Sprint(opt.ID) == id {
			return opt, true
		}
	}
	return KelurahanOption{}, false
}
