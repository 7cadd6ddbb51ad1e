// Package sanitizer provides input normalization functions for guest and
// property data.
//
// All normalization functions are idempotent - applying them multiple times
// produces the same result. Functions handle invalid input gracefully,
// typically by returning empty strings or empty slices rather than errors.
//
// Normalization includes:
//   - Phone numbers: convert to E.164 format (+[country][number])
//   - Access codes: digits only, as lock keypads accept them
//   - Free text: strip control characters, collapse whitespace
//   - Slices: remove duplicates and empty values after normalization
package sanitizer
