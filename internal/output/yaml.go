package output

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dshills/codecritic/internal/review"
)

// YAMLWriter outputs the full result as YAML.
type YAMLWriter struct{}

func (y *YAMLWriter) Write(w io.Writer, res *review.Result) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("writing YAML: %w", err)
	}
	return enc.Close()
}
