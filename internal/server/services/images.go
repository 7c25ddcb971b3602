package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/dmitrijs2005/gophforge/internal/common"
	"github.com/dmitrijs2005/gophforge/internal/filenames"
	"github.com/dmitrijs2005/gophforge/internal/logging"
	"github.com/dmitrijs2005/gophforge/internal/server/imagegen"
	"github.com/dmitrijs2005/gophforge/internal/server/imagestore"
	"github.com/dmitrijs2005/gophforge/internal/server/models"
)

// ImageRequest is the input of both image operations. Empty AspectRatio
// and ImageSize fall back to the defaults in common.
type ImageRequest struct {
	Prompt      string
	AspectRatio string
	ImageSize   string
}

// ImageService wraps the image generator and, for the persisting variant,
// the image store.
type ImageService struct {
	generator imagegen.Generator
	store     imagestore.Store
	logger    logging.Logger
}

func NewImageService(generator imagegen.Generator, store imagestore.Store, logger logging.Logger) *ImageService {
	return &ImageService{
		generator: generator,
		store:     store,
		logger:    logger.With("module", "images"),
	}
}

// Generate calls the model once and returns the first inline image.
func (s *ImageService) Generate(ctx context.Context, req ImageRequest) (img *models.GeneratedImage, err error) {
	ctx, span := tracer.Start(ctx, "ImageService.Generate")
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(req.Prompt) == "" {
		return nil, fmt.Errorf("%w: prompt is required", common.ErrorValidation)
	}
	if req.AspectRatio == "" {
		req.AspectRatio = common.DefaultAspectRatio
	}
	if req.ImageSize == "" {
		req.ImageSize = common.DefaultImageSize
	}

	resp, err := s.generator.Generate(ctx, imagegen.Request{
		Prompt:      req.Prompt,
		AspectRatio: req.AspectRatio,
		ImageSize:   req.ImageSize,
	})
	if err != nil {
		var te *imagegen.TransportError
		if !errors.As(err, &te) {
			err = &imagegen.TransportError{Err: err}
		}
		return nil, err
	}

	inline, ok := imagegen.FirstInline(resp)
	if !ok {
		return nil, common.ErrGenerationFailed
	}

	span.SetAttributes(
		attribute.String("image.mime_type", inline.MimeType),
		attribute.Int("image.bytes", len(inline.Data)),
	)
	return &models.GeneratedImage{Data: inline.Data, MimeType: inline.MimeType}, nil
}

// GenerateAndStore generates an image and saves it under a name derived from
// the "Server name:" line of the prompt. Nothing is written when generation
// fails.
func (s *ImageService) GenerateAndStore(ctx context.Context, req ImageRequest) (stored *models.StoredImage, err error) {
	if s.store == nil {
		return nil, errors.New("image store is not configured")
	}

	img, err := s.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "ImageService.Store")
	defer func() { endSpan(span, err) }()

	label := filenames.ExtractLabel(req.Prompt)
	name := filenames.Filename(filenames.Derive(req.Prompt))
	span.SetAttributes(attribute.String("image.filename", name))

	url, err := s.store.Put(ctx, name, img.Data, img.MimeType)
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}

	s.logger.Info(ctx, "image stored", "filename", name, "bytes", len(img.Data))
	return &models.StoredImage{Label: label, Filename: name, URL: url}, nil
}
