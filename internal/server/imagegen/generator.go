// Package imagegen talks to the text-to-image model.
package imagegen

import "context"

// Request is a single image generation call.
type Request struct {
	Prompt      string
	AspectRatio string
	ImageSize   string
}

// Response mirrors the candidates -> content -> parts layout of the model
// output. Only inline data parts carry image bytes.
type Response struct {
	Candidates []Candidate `json:"candidates"`
}

type Candidate struct {
	Content *Content `json:"content,omitempty"`
}

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

// InlineData is a binary payload. Data travels base64-encoded on the wire.
type InlineData struct {
	MimeType string `json:"mimeType"`
	Data     []byte `json:"data"`
}

// Generator produces images from prompts.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

// FirstInline returns the first part of resp carrying both bytes and a
// MIME type, scanning candidates in order.
func FirstInline(resp *Response) (*InlineData, bool) {
	if resp == nil {
		return nil, false
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if p.InlineData != nil && len(p.InlineData.Data) > 0 && p.InlineData.MimeType != "" {
				return p.InlineData, true
			}
		}
	}
	return nil, false
}
