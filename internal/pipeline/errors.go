package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/kdduha/audioflow/internal/generation"
	"github.com/kdduha/audioflow/internal/media"
	"github.com/kdduha/audioflow/internal/recovery"
)

type Kind string

const (
	KindInvalidInput        Kind = "invalid_input"
	KindEncoding            Kind = "encoding"
	KindModelUnavailable    Kind = "model_unavailable"
	KindEmptyResponse       Kind = "empty_response"
	KindUnparseableResponse Kind = "unparseable_response"
	// KindPackaging is only ever logged; a run never fails with it.
	KindPackaging Kind = "packaging"
	KindCanceled  Kind = "canceled"
)

type Stage string

const (
	StageInput    Stage = "input"
	StageEncode   Stage = "encode"
	StageAnalyze  Stage = "analyze"
	StageGenerate Stage = "generate"
	StageRecover  Stage = "recover"
	StagePackage  Stage = "package"
)

const genericMessage = "Something went wrong while creating the diagram. Please try again."

var messages = map[Kind]string{
	KindInvalidInput:        "Only audio or video recordings are supported.",
	KindEncoding:            "The file could not be read. Please try again with another file.",
	KindModelUnavailable:    "The analysis service is unavailable right now. Please try again later.",
	KindEmptyResponse:       "The analysis returned no content. Please try again.",
	KindUnparseableResponse: "The analysis result could not be understood. Please try again.",
	KindCanceled:            "The run was cancelled.",
}

// stageKinds classifies errors that carry no known sentinel.
var stageKinds = map[Stage]Kind{
	StageInput:    KindInvalidInput,
	StageEncode:   KindEncoding,
	StageAnalyze:  KindCanceled,
	StageGenerate: KindModelUnavailable,
	StageRecover:  KindUnparseableResponse,
}

// Error is the single error type Run returns.
type Error struct {
	Kind    Kind
	Stage   Stage
	Message string // safe to show to the user
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Stage, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(ctx context.Context, stage Stage, err error) *Error {
	kind := classify(ctx, err)
	if kind == "" {
		kind = stageKinds[stage]
	}
	msg, ok := messages[kind]
	if !ok {
		msg = genericMessage
	}
	return &Error{Kind: kind, Stage: stage, Message: msg, Err: err}
}

func classify(ctx context.Context, err error) Kind {
	switch {
	case ctx.Err() != nil, errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case errors.Is(err, media.ErrEncoding):
		return KindEncoding
	case errors.Is(err, generation.ErrEmptyResponse):
		return KindEmptyResponse
	case errors.Is(err, generation.ErrModelUnavailable):
		return KindModelUnavailable
	case errors.Is(err, recovery.ErrUnparseable):
		return KindUnparseableResponse
	default:
		return ""
	}
}

// KindOf returns the kind of a pipeline error, or "" for anything else.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// MessageOf returns the user-facing text for err.
func MessageOf(err error) string {
	var pe *Error
	if errors.As(err, &pe) && pe.Message != "" {
		return pe.Message
	}
	return genericMessage
}
