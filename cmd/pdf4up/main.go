// pdf4up - PDF to 4-up handout converter
package main

import (
	"bytes"
	"encoding/base64"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/novvoo/go-fourup/pkg/fourup"
	"github.com/novvoo/go-fourup/pkg/layout"
	"github.com/novvoo/go-fourup/pkg/pdfout"
)

const versionString = "pdf4up version 0.1.0"

func main() {
	// Define flags
	resolution := flag.Int("r", fourup.DefaultDPI, "resolution in DPI")
	b64 := flag.Bool("b64", false, "input is base64 encoded")
	verify := flag.Bool("verify", false, "read back the output and check it has one page per four source pages")
	quiet := flag.Bool("q", false, "don't print any messages")
	debug := flag.Bool("debug", false, "print pipeline progress")
	version := flag.Bool("v", false, "print version info")
	help := flag.Bool("h", false, "print usage information")
	flag.BoolVar(help, "help", false, "print usage information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n", versionString)
		fmt.Fprintf(os.Stderr, "Copyright 2024 go-fourup authors\n\n")
		fmt.Fprintf(os.Stderr, "Usage: pdf4up [options] <PDF-file> [<output-PDF-file>]\n\n")
		fmt.Fprintf(os.Stderr, "Use - as PDF-file to read from stdin; the result then goes to stdout.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *version {
		fmt.Println(versionString)
		fmt.Println("Copyright 2024 go-fourup authors")
		return
	}

	if *help || flag.NArg() < 1 {
		flag.Usage()
		return
	}

	inputFile := flag.Arg(0)
	outputFile := flag.Arg(1)
	if outputFile == "" && inputFile != "-" {
		outputFile = strings.TrimSuffix(inputFile, filepath.Ext(inputFile)) + "-4up.pdf"
	}

	input, err := readInput(inputFile, *b64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}

	var opts []fourup.Option
	if *debug && !*quiet {
		h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		opts = append(opts, fourup.WithLogger(slog.New(h)))
	}

	res, err := fourup.New(opts...).ConvertDocument(input, *resolution)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error converting PDF: %v\n", err)
		os.Exit(1)
	}
	output := res.PDF

	if *verify {
		want, err := verifyOutput(res)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error verifying output: %v\n", err)
			os.Exit(1)
		}
		if !*quiet {
			fmt.Fprintf(os.Stderr, "Verified: %d source pages on %d pages\n", res.SourcePages, want)
		}
	}

	if outputFile == "" || outputFile == "-" {
		if _, err := os.Stdout.Write(output); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := os.WriteFile(outputFile, output, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", outputFile, err)
		os.Exit(1)
	}

	if !*quiet {
		fmt.Fprintf(os.Stderr, "Wrote %s (%d pages per sheet, %d bytes)\n",
			outputFile, layout.GroupSize, len(output))
	}
}

// verifyOutput reads back res.PDF and checks it holds one page per group
// of source pages. It returns the expected page count.
func verifyOutput(res *fourup.Result) (int, error) {
	want := layout.GroupCount(res.SourcePages)
	return want, pdfout.Verify(res.PDF, want)
}

// readInput reads the whole document from a file or stdin
func readInput(name string, b64 bool) ([]byte, error) {
	var data []byte
	var err error
	if name == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return nil, err
	}

	if !b64 {
		return data, nil
	}
	return base64.StdEncoding.DecodeString(string(bytes.TrimSpace(data)))
}
