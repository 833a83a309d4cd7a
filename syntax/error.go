package syntax

import (
	"errors"
	"fmt"

	"github.com/coregx/tre/internal/arena"
	"github.com/coregx/tre/internal/stack"
)

// ErrorCode is a POSIX regex status code. The numeric values match the C
// <regex.h> REG_* constants.
//
// ErrorCode implements error, so codes work as sentinels:
//
//	if errors.Is(err, syntax.BadBR) { ... }
type ErrorCode int

const (
	OK       ErrorCode = iota // REG_OK
	NoMatch                   // REG_NOMATCH
	BadPat                    // REG_BADPAT
	ECollate                  // REG_ECOLLATE
	ECtype                    // REG_ECTYPE
	EEscape                   // REG_EESCAPE
	ESubReg                   // REG_ESUBREG
	EBrack                    // REG_EBRACK
	EParen                    // REG_EPAREN
	EBrace                    // REG_EBRACE
	BadBR                     // REG_BADBR
	ERange                    // REG_ERANGE
	ESpace                    // REG_ESPACE
	BadRpt                    // REG_BADRPT
)

var codeInfo = [...]struct {
	name string
	msg  string
}{
	OK:       {"REG_OK", "No error"},
	NoMatch:  {"REG_NOMATCH", "No match"},
	BadPat:   {"REG_BADPAT", "Invalid regexp"},
	ECollate: {"REG_ECOLLATE", "Unknown collating element"},
	ECtype:   {"REG_ECTYPE", "Unknown character class name"},
	EEscape:  {"REG_EESCAPE", "Trailing backslash"},
	ESubReg:  {"REG_ESUBREG", "Invalid back reference"},
	EBrack:   {"REG_EBRACK", "Missing ']'"},
	EParen:   {"REG_EPAREN", "Missing ')'"},
	EBrace:   {"REG_EBRACE", "Missing '}'"},
	BadBR:    {"REG_BADBR", "Invalid contents of {}"},
	ERange:   {"REG_ERANGE", "Invalid character range"},
	ESpace:   {"REG_ESPACE", "Out of memory"},
	BadRpt:   {"REG_BADRPT", "Repetition not preceded by valid expression"},
}

// Error returns the message for the code.
func (c ErrorCode) Error() string {
	if c >= 0 && int(c) < len(codeInfo) {
		return codeInfo[c].msg
	}
	return "Unknown error"
}

// String returns the C name of the code, such as "REG_BADBR".
func (c ErrorCode) String() string {
	if c >= 0 && int(c) < len(codeInfo) {
		return codeInfo[c].name
	}
	return fmt.Sprintf("REG_%d", int(c))
}

// Error is a compile failure for a specific pattern.
type Error struct {
	Code    ErrorCode
	Pattern string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("tre: compiling %q: %s", e.Pattern, e.Code.Error())
}

// Unwrap returns the status code.
func (e *Error) Unwrap() error {
	return e.Code
}

// CodeOf extracts the status code from err. Allocation ceilings of the
// internal arena and work stacks map to ESpace; unknown errors map to BadPat.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return OK
	}
	var code ErrorCode
	if errors.As(err, &code) {
		return code
	}
	if errors.Is(err, arena.ErrSpace) || errors.Is(err, stack.ErrSpace) {
		return ESpace
	}
	return BadPat
}

// wrap attaches the pattern to a parse failure.
func wrap(err error, pattern string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Code: CodeOf(err), Pattern: pattern}
}
