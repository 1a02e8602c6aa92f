package extract_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"

	"github.com/hanamura/go-xdvdfs/extract"
)

func TestReportFailed(t *testing.T) {
	assert.False(t, (&extract.Report{}).Failed())
	assert.True(t, (&extract.Report{Failures: []extract.Failure{{Path: "x"}}}).Failed())
}

func TestReportWriteYAML(t *testing.T) {
	report := &extract.Report{
		Files:   2,
		Dirs:    1,
		Skipped: 1,
		Bytes:   3010,
		Failures: []extract.Failure{
			{
				Path:   "DAMAGED/GHOST.BIN",
				Reason: "read 2048 bytes at 0xc345000 beyond image bounds",
				Err:    xerrors.New("beyond image bounds"),
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, report.WriteYAML(&buf))

	var decoded extract.Report
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, report.Files, decoded.Files)
	assert.Equal(t, report.Dirs, decoded.Dirs)
	assert.Equal(t, report.Skipped, decoded.Skipped)
	assert.Equal(t, report.Bytes, decoded.Bytes)
	require.Len(t, decoded.Failures, 1)
	assert.Equal(t, report.Failures[0].Path, decoded.Failures[0].Path)
	assert.Equal(t, report.Failures[0].Reason, decoded.Failures[0].Reason)
	assert.Nil(t, decoded.Failures[0].Err)
}
