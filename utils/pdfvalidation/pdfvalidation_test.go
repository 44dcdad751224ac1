package pdfvalidation

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePDFBytesRejectsOversize(t *testing.T) {
	limits := PDFLimits{MaxFileSizeMB: 1, MaxPages: 100}
	content := bytes.Repeat([]byte("a"), 2*1024*1024)

	result, err := ValidatePDFBytes(content, limits)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Error, "exceeds maximum allowed size")
}

func TestValidatePDFBytesRejectsMissingHeader(t *testing.T) {
	result, err := ValidatePDFBytes([]byte("this is not a pdf"), AttachmentLimits)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Error, "missing PDF header")
}

func TestValidatePDFBytesRejectsTruncatedPDF(t *testing.T) {
	// Correct magic, garbage structure
	result, err := ValidatePDFBytes([]byte("%PDF-1.4 but nothing else"), AttachmentLimits)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Error)
}
