package errors

type Code string

const (
	CodeUnknown            Code = "UNKNOWN"
	CodeInternal           Code = "INTERNAL_ERROR"
	CodeConfigValidation   Code = "CONFIG_VALIDATION_ERROR"
	CodeConfigReadError    Code = "CONFIG_READ_ERROR"
	CodeConfigParseError   Code = "CONFIG_PARSE_ERROR"
	CodeInputValidation    Code = "INPUT_VALIDATION_ERROR"
	CodeStateReadError     Code = "STATE_READ_ERROR"
	CodeStateWriteError    Code = "STATE_WRITE_ERROR"
	CodeStateParseError    Code = "STATE_PARSE_ERROR"
	CodeAssetReadError     Code = "ASSET_READ_ERROR"
	CodePlatformAPIError   Code = "PLATFORM_API_ERROR"
	CodePlatformAuthError  Code = "PLATFORM_AUTH_ERROR"
	CodeResourceNotFound   Code = "RESOURCE_NOT_FOUND"
	CodeResourceConflict   Code = "RESOURCE_CONFLICT"
	CodeComparisonError    Code = "COMPARISON_ERROR"
	CodeTypeAssertionError Code = "TYPE_ASSERTION_ERROR"
	CodeUnresolvedRef      Code = "UNRESOLVED_REFERENCE"
	CodeNotImplemented     Code = "NOT_IMPLEMENTED"
	CodeTimeout            Code = "TIMEOUT_ERROR"
	CodeAborted            Code = "ABORTED"

	// HCL var files
	CodeHCLParseError    Code = "HCL_PARSE_ERROR"
	CodeHCLVariableError Code = "HCL_VARIABLE_ERROR"

	CodeImportError Code = "IMPORT_ERROR"
)

func (c Code) String() string {
	return string(c)
}
