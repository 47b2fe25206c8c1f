package core

import "fmt"

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess            RetCode = iota // 0: Operation executed successfully.
	RetCInternalError                     // 1: Operation failed due to an internal error.
	RetCParseError                        // 2: Malformed or truncated instruction stream.
	RetCSchemaViolation                   // 3: Instruction references a table/column/row that does not exist or has the wrong type.
	RetCInvariantViolation                // 4: Applying the operation would break a store invariant.
	RetCAllocationFailure                 // 5: The recorder could not reserve space for the next instruction.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInternalError:
		return "InternalError"
	case RetCParseError:
		return "ParseError"
	case RetCSchemaViolation:
		return "SchemaViolation"
	case RetCInvariantViolation:
		return "InvariantViolation"
	case RetCAllocationFailure:
		return "AllocationFailure"
	default:
		return "Unknown"
	}
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("StoreError (code %s): %s", e.Code, e.Msg)
}

// NewError creates a new Error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// schemaErrf creates a SchemaViolation error with a formatted message.
func schemaErrf(format string, args ...interface{}) *Error {
	return NewError(RetCSchemaViolation, fmt.Sprintf(format, args...))
}

// invariantErrf creates an InvariantViolation error with a formatted message.
func invariantErrf(format string, args ...interface{}) *Error {
	return NewError(RetCInvariantViolation, fmt.Sprintf(format, args...))
}

// CodeOf returns the RetCode of err if it is a *Error, RetCInternalError
// otherwise (RetCSuccess for nil).
func CodeOf(err error) RetCode {
	if err == nil {
		return RetCSuccess
	}
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return RetCInternalError
}
