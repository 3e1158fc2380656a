package grammar

import "fmt"

var (
	// Err is the root of every grammar error.
	Err = fmt.Errorf("grammar error")

	ErrDecode        = fmt.Errorf("decoding error (%w)", Err)
	ErrEncode        = fmt.Errorf("encoding error (%w)", Err)
	ErrUnknownFormat = fmt.Errorf("unknown grammar format (%w)", Err)

	// ErrInvalid is the root of validation findings.
	ErrInvalid = fmt.Errorf("invalid grammar (%w)", Err)

	ErrDuplicated                       = fmt.Errorf("the same word is registered multiple times (%w)", ErrInvalid)
	ErrEmptyPattern                     = fmt.Errorf("the extraction pattern is empty (%w)", ErrInvalid)
	ErrInvalidRegularExpression         = fmt.Errorf("invalid regular expression (%w)", ErrInvalid)
	ErrUnbalancedBlockCommentDelimiters = fmt.Errorf("block comment needs both begin and end delimiters (%w)", ErrInvalid)
)

// DecodeError reports an enumerated field holding an unknown value.
type DecodeError struct {
	Field string
	Value string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Field, e.Value)
}

func (e *DecodeError) Unwrap() error { return ErrDecode }
