// Package provider defines the contract between the proxy core and
// upstream market-data clients: raw JSON-like documents in, a typed
// error out for any non-success response.
package provider

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Document is a raw JSON document as returned by an upstream provider,
// before normalization.
type Document = map[string]any

// Error represents a non-success response from an upstream provider.
// The status code and body are propagated upward untouched; the proxy
// never retries and never falls back to a second provider.
type Error struct {
	StatusCode int
	Body       []byte
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Body) > 0 {
		return fmt.Sprintf("upstream error (status %d): %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("upstream error (status %d)", e.StatusCode)
}

// FromResponse builds an Error from a non-success HTTP response,
// draining up to 8 KiB of the body for the error payload.
func FromResponse(resp *http.Response) *Error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
	return &Error{
		StatusCode: resp.StatusCode,
		Body:       body,
	}
}

// DecodeDocument decodes a JSON response body into a Document.
func DecodeDocument(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode upstream document: %w", err)
	}
	return doc, nil
}
