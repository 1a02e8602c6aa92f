package extract

import (
	"io"

	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"
)

// Report summarizes one extraction run.
type Report struct {
	Files    int       `yaml:"files"`
	Dirs     int       `yaml:"dirs"`
	Skipped  int       `yaml:"skipped"`
	Bytes    int64     `yaml:"bytes"`
	Failures []Failure `yaml:"failures,omitempty"`
}

// Failure records one entry that could not be extracted.
type Failure struct {
	Path   string `yaml:"path"`
	Reason string `yaml:"reason"`
	Err    error  `yaml:"-"`
}

// Failed reports whether any entry was left behind.
func (r *Report) Failed() bool {
	return len(r.Failures) > 0
}

// WriteYAML writes the report as a YAML document.
func (r *Report) WriteYAML(w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	defer encoder.Close()

	if err := encoder.Encode(r); err != nil {
		return xerrors.Errorf("failed to encode report: %w", err)
	}
	return nil
}
