package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const failurePayload = `{
  "success": false,
  "error": "OCR failed to extract room information from floor plan",
  "debug_info": {
    "ocr_available": true,
    "ocr_engine_initialized": true,
    "text_elements_found": 0,
    "message": "No room text could be detected in the floor plan image"
  }
}`

func TestCompile(t *testing.T) {
	s, err := Compile()
	require.NoError(t, err)
	require.NotNil(t, s)
}

func TestValidateFailureShape(t *testing.T) {
	require.NoError(t, Validate([]byte(failurePayload)))
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{
			"success without analysis sections",
			`{"success": true, "debug_info": {"ocr_available": true, "ocr_engine_initialized": true, "text_elements_found": 5}}`,
		},
		{
			"failure carrying floors",
			`{"success": false, "error": "x", "floors": [], "debug_info": {"ocr_available": true, "ocr_engine_initialized": true, "text_elements_found": 0}}`,
		},
		{
			"unknown top level field",
			`{"success": false, "error": "x", "extra": 1, "debug_info": {"ocr_available": true, "ocr_engine_initialized": true, "text_elements_found": 0}}`,
		},
		{"not json", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, Validate([]byte(tt.payload)))
		})
	}
}
