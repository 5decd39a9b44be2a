package dictionary

import "fmt"

// An ErrorKind classifies a DictionaryError. Each value corresponds to
// one of the grammar's distinct failure modes.
type ErrorKind string

const (
	ErrInvalidSectionOccurrence       ErrorKind = "invalid_section_occurrence"
	ErrInvalidSectionArgument         ErrorKind = "invalid_section_argument"
	ErrMissingIDSection               ErrorKind = "missing_id_section"
	ErrMissingDefaultVendorIDSection  ErrorKind = "missing_default_vendor_id_section"
	ErrAVPDefinedMultipleTimes        ErrorKind = "avp_defined_multiple_times"
	ErrMsgDefinedMultipleTimes        ErrorKind = "msg_defined_multiple_times"
	ErrMsgContainsInvalidID           ErrorKind = "msg_contains_invalid_id"
	ErrGroupedDefinitionForUnknownAVP ErrorKind = "grouped_definition_for_unknown_avp"
	ErrEnumDefinitionForUnknownAVP    ErrorKind = "enum_definition_for_unknown_avp"
	ErrAVPTypeInvalidLine             ErrorKind = "avp_type_invalid_line"
	ErrMultipleDefinitionFound        ErrorKind = "multiple_definition_found"
	ErrInvalidAVPType                 ErrorKind = "invalid_avp_type"
	ErrInvalidAVPFlags                ErrorKind = "invalid_avp_flags"
	ErrInvalidAVPQualifier            ErrorKind = "invalid_avp_qualifier"
	ErrEnumeratedAVPNotValued         ErrorKind = "enumerated_avp_not_valued"
	ErrGroupedAVPNotDefined           ErrorKind = "grouped_avp_not_defined"
	ErrMsgUsesUndefinedAVP            ErrorKind = "msg_uses_undefined_avp"
	ErrAVPUsesUndefinedAVP            ErrorKind = "avp_uses_undefined_avp"
	ErrMalformedCCFLine               ErrorKind = "malformed_ccf_line"
	ErrEnumDuplicatedDescription      ErrorKind = "enum_duplicated_description"
	ErrEnumDuplicatedValue            ErrorKind = "enum_duplicated_value"
	ErrAmbiguousAVPNaming             ErrorKind = "ambiguous_avp_naming"
	ErrInheritedModuleNotFound        ErrorKind = "inherited_module_not_found"
	ErrModuleReadFailed               ErrorKind = "module_read_failed"
	ErrNonExistingAppID               ErrorKind = "non_existing_app_id"
	ErrNoMatchingMessage              ErrorKind = "no_matching_message"
	ErrMultipleMatchingMessages       ErrorKind = "multiple_matching_messages"
)

// A DictionaryError reports a failure to load or resolve a .dia module
// or a Directory lookup against it. Detail carries the offending name,
// line, or code; Err wraps an underlying error (e.g. a file read
// failure) when there is one.
type DictionaryError struct {
	Kind   ErrorKind
	Detail string
	Err    error
}

func (e *DictionaryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("dictionary error (%s): %s: %s", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("dictionary error (%s): %s", e.Kind, e.Detail)
}

func (e *DictionaryError) Unwrap() error { return e.Err }

func newError(kind ErrorKind, detail string) *DictionaryError {
	return &DictionaryError{Kind: kind, Detail: detail}
}

func wrapError(kind ErrorKind, detail string, err error) *DictionaryError {
	return &DictionaryError{Kind: kind, Detail: detail, Err: err}
}
