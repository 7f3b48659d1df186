package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/immut/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestWrap(t *testing.T) {
	cause := errors.New("permission denied")
	err := domain.Wrap(cause, domain.ErrOutputWriteFailed)

	assert.ErrorIs(t, err, domain.ErrOutputWriteFailed)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, domain.ErrOutputRemoveFailed)
	assert.Equal(t, "failed to write generated file: permission denied", err.Error())
	assert.Equal(t, domain.ErrOutputWriteFailed.Error(), domain.Message(err))

	annotated := zerr.With(err, "path", "shapes/point_immut.go")
	assert.ErrorIs(t, annotated, domain.ErrOutputWriteFailed)
	assert.ErrorIs(t, errors.Join(errors.New("other"), annotated), domain.ErrOutputWriteFailed)
}

func TestAnnotate(t *testing.T) {
	err := domain.Annotate(domain.ErrUnknownModifier, "modifier", "frozen")

	assert.ErrorIs(t, err, domain.ErrUnknownModifier)
	assert.Equal(t, domain.ErrUnknownModifier.Error(), err.Error())
	assert.Equal(t, domain.ErrUnknownModifier.Error(), domain.Message(err))

	var z *zerr.Error
	if assert.ErrorAs(t, err, &z) {
		assert.Equal(t, "frozen", z.Metadata()["modifier"])
	}

	twice := domain.Annotate(err, "attribute", "x")
	assert.ErrorIs(t, twice, domain.ErrUnknownModifier)
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "plain", err: errors.New("boom"), want: "boom"},
		{name: "outermost", err: zerr.Wrap(errors.New("inner"), "outer"), want: "outer"},
		{name: "metadata only", err: zerr.With(errors.New("inner"), "k", "v"), want: "inner"},
		{name: "sentinel", err: domain.Annotate(domain.ErrEmptyModel, "source", "a#B"), want: domain.ErrEmptyModel.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.Message(tt.err))
		})
	}
}
