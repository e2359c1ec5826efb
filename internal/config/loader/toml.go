package loader

import (
	"bytes"
	"errors"

	"github.com/pelletier/go-toml/v2"
)

// decodeTOML decodes TOML data into v, rejecting unknown keys.
func decodeTOML(source string, data []byte, v any) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return tomlParseError(source, err)
	}
	return nil
}

// tomlParseError converts a go-toml error into a ParseError with position.
func tomlParseError(source string, err error) *ParseError {
	perr := &ParseError{
		Path:    source,
		Message: err.Error(),
		Err:     err,
	}

	var derr *toml.DecodeError
	var serr *toml.StrictMissingError
	switch {
	case errors.As(err, &derr):
		perr.Line, perr.Column = derr.Position()
	case errors.As(err, &serr) && len(serr.Errors) > 0:
		first := serr.Errors[0]
		perr.Line, perr.Column = first.Position()
		perr.Message = "unknown key " + keyPath(first.Key())
	}
	return perr
}

func keyPath(key toml.Key) string {
	var b bytes.Buffer
	for i, part := range key {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}
