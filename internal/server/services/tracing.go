package services

import (
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrijs2005/gophforge/internal/common"
)

// endSpan closes span. Not-found and validation outcomes are tagged but do
// not mark the span as failed.
func endSpan(span trace.Span, err error) {
	switch {
	case err == nil:
	case errors.Is(err, common.ErrorNotFound):
		span.SetAttributes(attribute.String("outcome", "not_found"))
	case errors.Is(err, common.ErrorValidation):
		span.SetAttributes(attribute.String("outcome", "invalid"))
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
