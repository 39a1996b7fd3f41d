// Package schedule turns a raw appointment API payload into the list of
// bookable slots that satisfy the configured [Rules].
//
// The payload is the decoded JSON value (typically []any of item objects).
// Each item carries a report timestamp ("nowTime") whose year is inherited by
// every schedule entry nested under it; entries only carry a month-day date.
//
// Malformed input never aborts evaluation. A non-sequence payload yields an
// empty result, an item with an unusable timestamp is skipped as a whole and
// an entry with an unusable date is skipped on its own. Each case logs a
// single warning.
package schedule
