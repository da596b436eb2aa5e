package api

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestOutputTo(t *testing.T) {
	data := map[string]any{"name": "litmind", "pages": 3}

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := OutputTo(&buf, OutputFormatJSON, data); err != nil {
			t.Fatalf("OutputTo() error = %v", err)
		}
		var decoded map[string]any
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid json: %v", err)
		}
		if decoded["name"] != "litmind" {
			t.Errorf("decoded = %v", decoded)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		if err := OutputTo(&buf, OutputFormatYAML, data); err != nil {
			t.Fatalf("OutputTo() error = %v", err)
		}
		if !strings.Contains(buf.String(), "name: litmind") {
			t.Errorf("output = %q", buf.String())
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		if err := OutputTo(&bytes.Buffer{}, OutputFormat("xml"), data); err == nil {
			t.Error("OutputTo() error = nil for unknown format")
		}
	})
}

func TestSetOutputFormat(t *testing.T) {
	t.Cleanup(func() { SetOutputFormat("yaml") })

	SetOutputFormat("json")
	if GetOutputFormat() != OutputFormatJSON {
		t.Errorf("GetOutputFormat() = %v, want json", GetOutputFormat())
	}

	// Anything unrecognized falls back to yaml.
	SetOutputFormat("csv")
	if GetOutputFormat() != OutputFormatYAML {
		t.Errorf("GetOutputFormat() = %v, want yaml fallback", GetOutputFormat())
	}
}
