package fault

import "errors"

var (
	ErrMissingField   = errors.New("required fault field is empty")
	ErrInvalidStatus  = errors.New("invalid fault status")
	ErrImmutableField = errors.New("fault field is immutable")
	ErrUnknownField   = errors.New("unknown fault field")

	ErrReportFieldMissing = errors.New("quick report is missing a required field")
	ErrReportTimeFormat   = errors.New("unrecognized fault time format")

	ErrCategoryRuleInvalid = errors.New("invalid category rule")
)
