package common

const (
	// FallbackLabel is used whenever no usable server name can be derived
	// from a generation prompt.
	FallbackLabel = "unknown"

	// ImageExtension is appended to every persisted image filename.
	ImageExtension = ".png"

	// DefaultAspectRatio and DefaultImageSize apply when a generation request
	// omits them.
	DefaultAspectRatio = "16:9"
	DefaultImageSize   = "1K"
)
