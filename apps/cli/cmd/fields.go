package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/abdul-hamid-achik/hitrack/packages/multipart"
)

// fieldFile is an @file argument. The multipart builder closes the files
// it reads; cleanup closes only the ones it never got to.
type fieldFile struct {
	*os.File
	closed bool
}

func (f *fieldFile) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	return f.File.Close()
}

// parseFields turns name=value and name=@path arguments into multipart
// fields. The returned cleanup closes any file that was not consumed.
func parseFields(args []string) (multipart.Fields, func(), error) {
	var files []*fieldFile
	cleanup := func() {
		for _, f := range files {
			if !f.closed {
				_ = f.Close()
			}
		}
	}

	fields := make(multipart.Fields, 0, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			cleanup()
			return nil, nil, withCode(ExitParseError, fmt.Errorf("invalid field %q, expected name=value or name=@file", arg))
		}

		if path, isFile := strings.CutPrefix(value, "@"); isFile {
			f, err := os.Open(path)
			if err != nil {
				cleanup()
				return nil, nil, withCode(ExitIOError, err)
			}
			ff := &fieldFile{File: f}
			files = append(files, ff)
			fields = append(fields, multipart.Field{Name: name, Value: ff})
			continue
		}
		fields = append(fields, multipart.Field{Name: name, Value: value})
	}
	return fields, cleanup, nil
}

// parseHeader splits "Name: value".
func parseHeader(arg string) (string, string, error) {
	name, value, ok := strings.Cut(arg, ":")
	if !ok {
		return "", "", withCode(ExitParseError, fmt.Errorf("invalid header %q, expected 'Name: value'", arg))
	}
	return strings.TrimSpace(name), strings.TrimSpace(value), nil
}

// readArg returns value, or the contents of the file when value starts
// with "@".
func readArg(value string) ([]byte, error) {
	if path, ok := strings.CutPrefix(value, "@"); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, withCode(ExitIOError, err)
		}
		return data, nil
	}
	return []byte(value), nil
}
