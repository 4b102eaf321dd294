package bus

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/ckiev5/family-chart/pkg/validation"
	"go.uber.org/zap"
)

// Command represents a command that changes state
type Command interface {
	Validate() error
}

// CommandHandler handles a specific command type
type CommandHandler interface {
	Handle(cmd Command) error
}

// CommandBus dispatches commands to their handlers
type CommandBus struct {
	handlers map[reflect.Type]CommandHandler
	mu       sync.RWMutex
}

// NewCommandBus creates a new command bus
func NewCommandBus() *CommandBus {
	return &CommandBus{
		handlers: make(map[reflect.Type]CommandHandler),
	}
}

// Register registers a handler for a command type
func (b *CommandBus) Register(cmdType Command, handler CommandHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := reflect.TypeOf(cmdType)
	if _, exists := b.handlers[t]; exists {
		return fmt.Errorf("handler already registered for command type %s", t.Name())
	}

	b.handlers[t] = handler
	return nil
}

// Send dispatches a command to its handler
func (b *CommandBus) Send(cmd Command) error {
	b.mu.RLock()
	handler, exists := b.handlers[reflect.TypeOf(cmd)]
	b.mu.RUnlock()

	if !exists {
		return fmt.Errorf("%w: %T", ErrHandlerNotFound, cmd)
	}

	if err := handler.Handle(cmd); err != nil {
		return fmt.Errorf("command %s failed: %w", commandName(cmd), err)
	}
	return nil
}

// Middleware defines command middleware
type Middleware func(next CommandHandler) CommandHandler

// CommandHandlerFunc is an adapter to allow functions to be used as handlers
type CommandHandlerFunc func(cmd Command) error

// Handle implements CommandHandler
func (f CommandHandlerFunc) Handle(cmd Command) error {
	return f(cmd)
}

// Typed adapts a handler for one concrete command type.
func Typed[T Command](fn func(T) error) CommandHandler {
	return CommandHandlerFunc(func(cmd Command) error {
		typed, ok := cmd.(T)
		if !ok {
			return fmt.Errorf("unexpected command type %T", cmd)
		}
		return fn(typed)
	})
}

// LoggingMiddleware logs command execution
func LoggingMiddleware(logger *zap.Logger) Middleware {
	return func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(cmd Command) error {
			cmdType := commandName(cmd)
			logger.Debug("Executing command", zap.String("type", cmdType))

			err := next.Handle(cmd)
			if err != nil {
				logger.Warn("Command failed", zap.String("type", cmdType), zap.Error(err))
			} else {
				logger.Info("Command succeeded", zap.String("type", cmdType))
			}

			return err
		})
	}
}

// ValidationMiddleware ensures commands are valid
func ValidationMiddleware() Middleware {
	return func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(cmd Command) error {
			if err := validation.GetValidator().Validate(cmd); err != nil {
				return fmt.Errorf("%w: %w", ErrValidationFailed, err)
			}
			return next.Handle(cmd)
		})
	}
}

// Recorder receives one observation per executed command.
type Recorder interface {
	ObserveCommand(name string, err error)
}

// MetricsMiddleware reports every command outcome to rec.
func MetricsMiddleware(rec Recorder) Middleware {
	return func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(cmd Command) error {
			err := next.Handle(cmd)
			rec.ObserveCommand(commandName(cmd), err)
			return err
		})
	}
}

// Pipeline chains multiple middleware together
type Pipeline struct {
	middlewares []Middleware
}

// NewPipeline creates a new middleware pipeline
func NewPipeline(middlewares ...Middleware) *Pipeline {
	return &Pipeline{
		middlewares: middlewares,
	}
}

// Execute runs the command through the pipeline
func (p *Pipeline) Execute(handler CommandHandler) CommandHandler {
	// Apply middleware in reverse order
	for i := len(p.middlewares) - 1; i >= 0; i-- {
		handler = p.middlewares[i](handler)
	}
	return handler
}

func commandName(cmd Command) string {
	t := reflect.TypeOf(cmd)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Errors
var (
	ErrHandlerNotFound  = errors.New("command handler not found")
	ErrValidationFailed = errors.New("command validation failed")
)
