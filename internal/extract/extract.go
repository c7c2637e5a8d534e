// Package extract turns PDF bytes into plain text by delegating to an
// external converter. The converter is treated as a black box behind the
// Extractor interface so tests and alternative deployments can substitute it.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Extractor converts a PDF byte stream into its plain text.
type Extractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

// commandExtractor shells out to a converter binary, feeding PDF bytes on
// stdin and reading extracted text from stdout.
type commandExtractor struct {
	command string
	args    []string
}

// NewPDFToText returns the default Extractor backed by poppler-utils'
// pdftotext; "-" arguments read stdin and write stdout.
func NewPDFToText() Extractor {
	return NewCommandExtractor("pdftotext", "-", "-")
}

// NewCommandExtractor returns an Extractor backed by an arbitrary converter
// command.
func NewCommandExtractor(command string, args ...string) Extractor {
	return &commandExtractor{command: command, args: args}
}

func (e *commandExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	cmd := exec.CommandContext(ctx, e.command, e.args...)
	cmd.Stdin = bytes.NewReader(data)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%s: %w", e.command, ctx.Err())
		}
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("%s: %v: %s", e.command, err, msg)
		}
		return "", fmt.Errorf("%s: %w", e.command, err)
	}

	return out.String(), nil
}
