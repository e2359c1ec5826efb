package loader

import (
	"bytes"
	"errors"
	"io"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// yamlLine extracts the line number yaml.v3 embeds in its messages.
var yamlLine = regexp.MustCompile(`line (\d+)`)

// decodeYAML decodes YAML data into v, rejecting unknown keys.
func decodeYAML(source string, data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil // Empty document
		}
		return yamlParseError(source, err)
	}
	return nil
}

func yamlParseError(source string, err error) *ParseError {
	msg := err.Error()

	var terr *yaml.TypeError
	if errors.As(err, &terr) && len(terr.Errors) > 0 {
		msg = terr.Errors[0]
	}

	perr := &ParseError{
		Path:    source,
		Message: strings.TrimPrefix(msg, "yaml: "),
		Err:     err,
	}
	if m := yamlLine.FindStringSubmatch(msg); m != nil {
		perr.Line, _ = strconv.Atoi(m[1])
	}
	return perr
}
