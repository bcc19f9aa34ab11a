package errors

import "fmt"

type ErrorCode int

const (
	InternalError = iota
	InvalidConfiguration
	ProtocolViolation

	EvaluationError
	MissingParameter
	UnknownIndex

	UnsupportedValueType
	InvalidGeometry
	AmbiguousCoordinateSpecification
	InvalidCoordinateReferenceSystem
	ValueOutOfRange
)

func NewInternalError(msg string) VeloError {
	return NewVeloErrorf(InternalError, "Internal error - %s please consult server logs for details", msg)
}

func NewInvalidConfigurationError(msg string) VeloError {
	return NewVeloErrorf(InvalidConfiguration, "Invalid configuration: %s", msg)
}

// NewProtocolViolationError signals that an operator received a message variant
// that is invalid for its current state. This is an internal bug, callers are
// expected to panic with the returned error.
func NewProtocolViolationError(msg string) VeloError {
	return NewVeloErrorf(ProtocolViolation, "Protocol violation: %s", msg)
}

func NewEvaluationError(msg string) VeloError {
	return NewVeloErrorf(EvaluationError, "Expression evaluation failed: %s", msg)
}

func NewMissingParameterError(name string) VeloError {
	return NewVeloErrorf(MissingParameter, "Missing query parameter: %s", name)
}

func NewUnknownIndexError(labelID int, propertyID int) VeloError {
	return NewVeloErrorf(UnknownIndex, "No index for label %d property %d", labelID, propertyID)
}

func NewUnsupportedValueTypeError(object interface{}) VeloError {
	return NewVeloErrorf(UnsupportedValueType, "Cannot convert %T to a value", object)
}

func NewInvalidGeometryError(geometryType string) VeloError {
	return NewVeloErrorf(InvalidGeometry, "Cannot handle geometry type: %s", geometryType)
}

func NewAmbiguousCoordinateSpecificationError() VeloError {
	return NewVeloErrorf(AmbiguousCoordinateSpecification, "A point must contain either 'x' and 'y' or 'latitude' and 'longitude'")
}

func NewInvalidCoordinateReferenceSystemError(crs string) VeloError {
	return NewVeloErrorf(InvalidCoordinateReferenceSystem, "Unknown coordinate reference system: %s", crs)
}

func NewValueOutOfRangeError(msg string) VeloError {
	return NewVeloErrorf(ValueOutOfRange, "Value out of range. %s", msg)
}

func NewVeloErrorf(errorCode ErrorCode, msgFormat string, args ...interface{}) VeloError {
	msg := fmt.Sprintf(fmt.Sprintf("VGR%04d - %s", errorCode, msgFormat), args...)
	return VeloError{Code: errorCode, Msg: msg}
}

func NewVeloError(errorCode ErrorCode, msg string) VeloError {
	return VeloError{Code: errorCode, Msg: msg}
}

// VeloError is any kind of error that is exposed to the user via external interfaces
type VeloError struct {
	Code ErrorCode
	Msg  string
}

func (u VeloError) Error() string {
	return u.Msg
}

// Code extracts the ErrorCode from err if it is a VeloError anywhere in its
// chain, otherwise returns InternalError and false.
func Code(err error) (ErrorCode, bool) {
	var verr VeloError
	if As(err, &verr) {
		return verr.Code, true
	}
	return InternalError, false
}
