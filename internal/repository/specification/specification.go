package specification

import "gorm.io/gorm"

// Specification defines the interface for query specifications. Each
// specification contributes exactly one conjunctive clause; values travel
// as bind parameters, never interpolated into the query text.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}
