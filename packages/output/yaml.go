package output

import (
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter formats envs, cookies and responses as one YAML document
type YAMLFormatter struct {
	collector
	writer io.Writer
}

type YAMLOption func(*YAMLFormatter)

func NewYAMLFormatter(opts ...YAMLOption) *YAMLFormatter {
	f := &YAMLFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func YAMLWithWriter(w io.Writer) YAMLOption {
	return func(f *YAMLFormatter) {
		f.writer = w
	}
}

// Flush writes the accumulated YAML output
func (f *YAMLFormatter) Flush() error {
	encoder := yaml.NewEncoder(f.writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(f.doc); err != nil {
		return err
	}
	return encoder.Close()
}
