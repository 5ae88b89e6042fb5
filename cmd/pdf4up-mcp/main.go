// pdf4up-mcp - MCP server exposing the 4-up converter as a tool
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/novvoo/go-fourup/pkg/fourup"
)

func main() {
	// stdout carries the protocol, so logs go to stderr
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	conv := fourup.New(fourup.WithLogger(logger))

	s := server.NewMCPServer("SlideConverter", "0.1.0")
	s.AddTool(convertTool(), convertHandler(conv))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Error serving: %v\n", err)
		os.Exit(1)
	}
}

func convertTool() mcp.Tool {
	return mcp.NewTool("convert_pdf_4up",
		mcp.WithDescription("Converts a PDF into a new PDF showing four source pages per page. "+
			"Takes base64 encoded PDF data or a local file path; returns the converted PDF as base64."),
		mcp.WithString("input_pdf_base64",
			mcp.Description("Base64 encoded bytes of the original PDF"),
		),
		mcp.WithString("input_pdf_path",
			mcp.Description("Local PDF file path (alternative)"),
		),
		mcp.WithNumber("dpi",
			mcp.Description("Render DPI"),
			mcp.DefaultNumber(fourup.DefaultDPI),
		),
	)
}

func convertHandler(conv *fourup.Converter) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res := conv.RunTool(fourup.ToolRequest{
			InputPDFBase64: req.GetString("input_pdf_base64", ""),
			InputPDFPath:   req.GetString("input_pdf_path", ""),
			DPI:            req.GetInt("dpi", fourup.DefaultDPI),
		})
		body, err := json.Marshal(res)
		if err != nil {
			return nil, err
		}
		if res.Error != "" {
			return mcp.NewToolResultError(string(body)), nil
		}
		return mcp.NewToolResultText(string(body)), nil
	}
}
