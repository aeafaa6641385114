package model

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func validValues() FormValues {
	return FormValues{
		Nama:            "Posyandu Melati",
		Alamat:          "Jl. Mawar",
		Wilayah:         "RW01",
		KelurahanID:     "3",
		PenanggungJawab: "Aisyah",
		NoHP:            "0812",
		Akreditasi:      "MADYA",
		Longitude:       "107.6",
		Latitude:        "-6.9",
	}
}

func TestValidate_BuildsTypedPayload(t *testing.T) {
	got, err := Validate(validValues())
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	want := UpdatePayload{
		Nama:            "Posyandu Melati",
		Alamat:          "Jl. Mawar",
		Wilayah:         "RW01",
		KelurahanID:     3,
		PenanggungJawab: "Aisyah",
		NoHP:            "0812",
		Akreditasi:      "MADYA",
		Longitude:       107.6,
		Latitude:        -6.9,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_EveryEmptyFieldIsRequired(t *testing.T) {
	for _, field := range Fields() {
		t.Run(string(field), func(t *testing.T) {
			values := validValues()
			if err := values.Set(field, ""); err != nil {
				t.Fatalf("set: %v", err)
			}
			_, err := Validate(values)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Kind != RequiredFieldMissing {
				t.Fatalf("expected RequiredFieldMissing, got %s", verr.Kind)
			}
			if diff := cmp.Diff([]Field{field}, verr.Fields); diff != "" {
				t.Fatalf("fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidate_RequiredCheckedBeforeNumbers(t *testing.T) {
	values := validValues()
	values.Longitude = "abc"
	values.Nama = ""
	_, err := Validate(values)
	if !IsValidationKind(err, RequiredFieldMissing) {
		t.Fatalf("expected RequiredFieldMissing first, got %v", err)
	}
}

func TestValidate_NotANumber(t *testing.T) {
	cases := []struct {
		name   string
		lon    string
		lat    string
		fields []Field
	}{
		{name: "longitude word", lon: "not-a-number", lat: "-6.9", fields: []Field{FieldLongitude}},
		{name: "latitude word", lon: "107.6", lat: "abc", fields: []Field{FieldLatitude}},
		{name: "both", lon: "x", lat: "y", fields: []Field{FieldLongitude, FieldLatitude}},
		{name: "nan literal", lon: "NaN", lat: "1", fields: []Field{FieldLongitude}},
		{name: "infinity", lon: "1", lat: "+Inf", fields: []Field{FieldLatitude}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			values := validValues()
			values.Longitude = tc.lon
			values.Latitude = tc.lat
			_, err := Validate(values)
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Kind != NotANumber {
				t.Fatalf("expected NotANumber, got %v", err)
			}
			if diff := cmp.Diff(tc.fields, verr.Fields); diff != "" {
				t.Fatalf("fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidate_InvalidReference(t *testing.T) {
	for _, raw := range []string{"tiga", "3.5", "-"} {
		values := validValues()
		values.KelurahanID = raw
		_, err := Validate(values)
		if !IsValidationKind(err, InvalidReference) {
			t.Fatalf("kelurahanId %q: expected InvalidReference, got %v", raw, err)
		}
	}
}

func TestValidate_WhitespaceIsNotEmpty(t *testing.T) {
	values := validValues()
	values.Wilayah = " "
	if _, err := Validate(values); err != nil {
		t.Fatalf("whitespace-only text is accepted as non-empty, got %v", err)
	}
}

func TestCheckReference(t *testing.T) {
	opts := []KelurahanOption{{ID: 3, Nama: "Coblong"}}
	if !CheckReference("3", opts) {
		t.Fatalf("expected 3 to match")
	}
	if CheckReference("4", opts) {
		t.Fatalf("expected 4 not to match")
	}
}

func TestAkreditasi(t *testing.T) {
	values := AkreditasiValues()
	if len(values) != 6 {
		t.Fatalf("expected 6 tokens, got %d", len(values))
	}
	for _, v := range values {
		parsed, err := ParseAkreditasi(string(v))
		if err != nil || parsed != v {
			t.Fatalf("ParseAkreditasi(%q) = %q, %v", v, parsed, err)
		}
	}
	if _, err := ParseAkreditasi("madya"); err == nil {
		t.Fatalf("tokens are case-preserving; lowercase must be rejected")
	}
	if got := AkreditasiBelumAkreditasi.Label(); got != "BELUM AKREDITASI" {
		t.Fatalf("unexpected label %q", got)
	}
}
