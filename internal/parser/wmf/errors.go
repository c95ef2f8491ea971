package wmf

import "errors"

var (
	// ErrInvalidHeader is returned when neither a placeable nor a valid
	// standard header is present.
	ErrInvalidHeader = errors.New("invalid metafile header")

	// ErrChecksum is returned when a placeable header checksum does not match.
	ErrChecksum = errors.New("placeable header checksum mismatch")

	// ErrEnhancedMetafile is returned for EMF input, which is not supported.
	ErrEnhancedMetafile = errors.New("enhanced metafiles are not supported")

	// ErrShortRecord is returned when a record or its parameters extend past
	// the end of the data.
	ErrShortRecord = errors.New("incomplete record")

	// ErrBrokenRecord is returned for records with an impossible size.
	ErrBrokenRecord = errors.New("broken record")

	// ErrUnknownRecord is returned for a function outside the metafile
	// function table.
	ErrUnknownRecord = errors.New("unknown record function")

	// ErrObjectTableFull is returned when a record creates an object while
	// every handle slot is taken.
	ErrObjectTableFull = errors.New("object table full")
)
