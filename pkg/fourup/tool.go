package fourup

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Result record fields for successful tool calls
const (
	OutputFilename = "converted_4slayt.pdf"
	MimeType       = "application/pdf"
)

// ToolRequest is the argument record of the convert_pdf_4up tool. Exactly
// one of InputPDFBase64 and InputPDFPath should be set; base64 wins when
// both are.
type ToolRequest struct {
	InputPDFBase64 string `json:"input_pdf_base64,omitempty"`
	InputPDFPath   string `json:"input_pdf_path,omitempty"`
	DPI            int    `json:"dpi,omitempty"`
}

// ToolResult is the reply record. On failure only Error is set.
type ToolResult struct {
	Filename  string `json:"filename,omitempty"`
	PDFBase64 string `json:"pdf_base64,omitempty"`
	MimeType  string `json:"mime_type,omitempty"`
	Error     string `json:"error,omitempty"`
}

// missingInput is reported to tool callers without the conversion prefix.
type missingInput string

func (m missingInput) Error() string { return string(m) }

// LoadInput returns the document bytes named by req.
func LoadInput(req ToolRequest) ([]byte, error) {
	switch {
	case req.InputPDFBase64 != "":
		data, err := base64.StdEncoding.DecodeString(req.InputPDFBase64)
		if err != nil {
			return nil, invalidInput(fmt.Errorf("decoding base64 input: %w", err))
		}
		return data, nil

	case req.InputPDFPath != "":
		data, err := os.ReadFile(req.InputPDFPath)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, invalidInput(missingInput("PDF not found at path: " + req.InputPDFPath))
		}
		if err != nil {
			return nil, invalidInput(err)
		}
		return data, nil

	default:
		return nil, invalidInput(missingInput("Provide either input_pdf_base64 or input_pdf_path"))
	}
}

// RunTool loads the input, converts it and shapes the result record.
func (c *Converter) RunTool(req ToolRequest) ToolResult {
	input, err := LoadInput(req)
	var m missingInput
	if errors.As(err, &m) {
		return ToolResult{Error: m.Error()}
	}

	var out []byte
	if err == nil {
		out, err = c.Convert(input, req.DPI)
	}
	if err != nil {
		return ToolResult{Error: fmt.Sprintf("PDF conversion failed: %v", err)}
	}

	return ToolResult{
		Filename:  OutputFilename,
		PDFBase64: base64.StdEncoding.EncodeToString(out),
		MimeType:  MimeType,
	}
}
