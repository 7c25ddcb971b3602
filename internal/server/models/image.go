package models

// GeneratedImage is the raw payload returned by the image model.
type GeneratedImage struct {
	Data     []byte
	MimeType string
}

// StoredImage describes a generated image after it has been written to the
// image store under a name derived from the prompt.
type StoredImage struct {
	// Label is the server name extracted from the prompt, before sanitizing.
	Label string
	// Filename is the sanitized stem plus extension; it is the storage key.
	Filename string
	// URL is where clients can fetch the image.
	URL string
}
