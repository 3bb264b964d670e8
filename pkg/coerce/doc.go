// Package coerce classifies runtime values into the nine value kinds the form
// tree understands and converts them into comparable or storable forms. It
// also hosts the date normalizer used by the patcher and the access
// evaluator.
package coerce
