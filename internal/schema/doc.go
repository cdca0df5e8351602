// Package schema normalizes and validates loosely shaped JSON records.
//
// Validation is structural: a record passes EnsureShape when every required
// key is present, whatever its value. Typed decoding (Decode) runs after the
// structural pass and enforces the per-record invariants declared by the
// target type's Validate method.
package schema
