// Package diagnostics builds a support report describing what each device
// exposes, which catalog sensors resolve on it, and how devices of the
// same model differ. Privacy-sensitive attributes are redacted.
package diagnostics
