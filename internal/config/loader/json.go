package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// decodeJSON decodes a single JSON value into v, rejecting unknown fields.
func decodeJSON(source string, data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil // Empty document
		}
		return jsonParseError(source, data, err)
	}
	if dec.More() {
		return &ParseError{
			Path:    source,
			Message: "unexpected data after top-level value",
		}
	}
	return nil
}

func jsonParseError(source string, data []byte, err error) *ParseError {
	perr := &ParseError{
		Path:    source,
		Message: err.Error(),
		Err:     err,
	}

	var offset int64 = -1
	var serr *json.SyntaxError
	var terr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &serr):
		offset = serr.Offset
	case errors.As(err, &terr):
		offset = terr.Offset
	}
	if offset >= 0 {
		perr.Line, perr.Column = lineColumn(data, offset)
	}
	return perr
}

// lineColumn converts a byte offset into a 1-based line and column.
func lineColumn(data []byte, offset int64) (line, column int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	before := data[:offset]
	line = bytes.Count(before, []byte{'\n'}) + 1
	column = len(before) - bytes.LastIndexByte(before, '\n')
	return line, column
}
