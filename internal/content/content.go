// Package content turns stored PDF bytes into display-ready data URIs and back.
package content

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// MediaTypePDF is the media type of every stored document.
const MediaTypePDF = "application/pdf"

var (
	// ErrUndecodable means the bytes are empty or not a PDF.
	ErrUndecodable = errors.New("content: data is not a decodable pdf")
	// ErrInvalidDataURI means a string is not a base64 data URI.
	ErrInvalidDataURI = errors.New("content: invalid data uri")
)

var pdfMagic = []byte("%PDF-")

// ToDataURI encodes a stored PDF as data:application/pdf;base64,....
func ToDataURI(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !IsPDF(data) {
		return "", ErrUndecodable
	}

	prefix := "data:" + MediaTypePDF + ";base64,"
	var b strings.Builder
	b.Grow(len(prefix) + base64.StdEncoding.EncodedLen(len(data)))
	b.WriteString(prefix)
	b.WriteString(base64.StdEncoding.EncodeToString(data))

	return b.String(), nil
}

// ParseDataURI decodes a base64 data URI into its bytes and media type.
func ParseDataURI(uri string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, "", fmt.Errorf("%w: missing data: scheme", ErrInvalidDataURI)
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", fmt.Errorf("%w: missing payload separator", ErrInvalidDataURI)
	}

	mediaType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return nil, "", fmt.Errorf("%w: only base64 encoding is supported", ErrInvalidDataURI)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}

	return data, mediaType, nil
}

// IsPDF reports whether data starts with the PDF header. Leading whitespace is
// tolerated, as some producers emit it.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), pdfMagic)
}
