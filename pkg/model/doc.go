// Package model defines the Posyandu record, the typed form state mirrored
// from it, and the submit-time validation that turns form text into the
// typed update payload. Form state is an explicit struct with one string per
// input so every field access is checked at compile time; numeric fields stay
// textual until Validate coerces them (longitude/latitude as float64,
// kelurahanId as int).
package model
