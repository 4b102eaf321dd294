package bus

import (
	"errors"
	"testing"

	apperrors "github.com/ckiev5/family-chart/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type pingCommand struct {
	Target string `validate:"required"`
	reject bool
}

func (c pingCommand) Validate() error {
	if c.reject {
		return apperrors.NewValidationError("rejected")
	}
	return nil
}

type otherCommand struct{}

func (otherCommand) Validate() error { return nil }

type recorder struct {
	names []string
	errs  []error
}

func (r *recorder) ObserveCommand(name string, err error) {
	r.names = append(r.names, name)
	r.errs = append(r.errs, err)
}

func TestCommandBus_SendDispatchesByType(t *testing.T) {
	b := NewCommandBus()
	var got []string
	require.NoError(t, b.Register(pingCommand{}, Typed(func(c pingCommand) error {
		got = append(got, c.Target)
		return nil
	})))

	require.NoError(t, b.Send(pingCommand{Target: "a"}))
	assert.Equal(t, []string{"a"}, got)

	err := b.Send(otherCommand{})
	assert.ErrorIs(t, err, ErrHandlerNotFound)
}

func TestCommandBus_RegisterTwice(t *testing.T) {
	b := NewCommandBus()
	h := CommandHandlerFunc(func(Command) error { return nil })
	require.NoError(t, b.Register(pingCommand{}, h))
	assert.Error(t, b.Register(pingCommand{}, h))
}

func TestCommandBus_HandlerErrorKeepsType(t *testing.T) {
	b := NewCommandBus()
	require.NoError(t, b.Register(pingCommand{}, CommandHandlerFunc(func(Command) error {
		return apperrors.NewInvariantError("broken")
	})))

	err := b.Send(pingCommand{Target: "a"})
	require.Error(t, err)
	assert.True(t, apperrors.IsInvariant(err))
	assert.Contains(t, err.Error(), "pingCommand")
}

func TestValidationMiddleware(t *testing.T) {
	calls := 0
	handler := NewPipeline(ValidationMiddleware()).Execute(CommandHandlerFunc(func(Command) error {
		calls++
		return nil
	}))

	err := handler.Handle(pingCommand{})
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.True(t, apperrors.IsValidation(err), "struct tags")

	err = handler.Handle(pingCommand{Target: "a", reject: true})
	assert.True(t, apperrors.IsValidation(err), "self check")

	require.NoError(t, handler.Handle(pingCommand{Target: "a"}))
	assert.Equal(t, 1, calls)
}

func TestPipelineOrderAndLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	rec := &recorder{}
	var order []string
	mark := func(name string) Middleware {
		return func(next CommandHandler) CommandHandler {
			return CommandHandlerFunc(func(cmd Command) error {
				order = append(order, name)
				return next.Handle(cmd)
			})
		}
	}

	fail := errors.New("boom")
	handler := NewPipeline(mark("outer"), LoggingMiddleware(zap.New(core)), MetricsMiddleware(rec), mark("inner")).
		Execute(CommandHandlerFunc(func(Command) error { return fail }))

	err := handler.Handle(pingCommand{Target: "a"})
	assert.ErrorIs(t, err, fail)
	assert.Equal(t, []string{"outer", "inner"}, order)
	assert.Equal(t, []string{"pingCommand"}, rec.names)
	assert.Equal(t, 1, logs.FilterMessage("Command failed").Len())
}

func TestTypedRejectsOtherCommands(t *testing.T) {
	h := Typed(func(pingCommand) error { return nil })
	assert.Error(t, h.Handle(otherCommand{}))
}
