package cipherlink

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Handler receives frames of the type it was registered for. Handlers
// run on the session's single dispatch goroutine, so they may touch
// shared application state without extra locking, but a slow handler
// delays every event queued behind it.
type Handler func(*Frame)

// HandlerID identifies a registered handler for removal via Off.
type HandlerID uint64

// handlerRegistry is the typed publish/subscribe registry behind
// Session.On/Off/Emit: frame type -> handler id -> handler.
type handlerRegistry struct {
	mu       sync.RWMutex
	handlers map[FrameType]map[HandlerID]Handler
	nextID   atomic.Uint64
}

func newHandlerRegistry() *handlerRegistry {
	return &handlerRegistry{
		handlers: make(map[FrameType]map[HandlerID]Handler),
	}
}

// on registers a handler for the given frame type.
func (r *handlerRegistry) on(t FrameType, h Handler) HandlerID {
	id := HandlerID(r.nextID.Add(1))

	r.mu.Lock()
	if r.handlers[t] == nil {
		r.handlers[t] = make(map[HandlerID]Handler)
	}
	r.handlers[t][id] = h
	r.mu.Unlock()

	return id
}

// off removes a handler. Safe to call multiple times.
func (r *handlerRegistry) off(t FrameType, id HandlerID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if typed, ok := r.handlers[t]; ok {
		delete(typed, id)
		if len(typed) == 0 {
			delete(r.handlers, t)
		}
	}
}

// dispatch invokes every handler registered for the frame's type. Each
// handler is wrapped so a panic in one is logged and cannot block
// dispatch to the rest.
func (r *handlerRegistry) dispatch(f *Frame, log zerolog.Logger) {
	r.mu.RLock()
	typed := r.handlers[f.Type]
	if len(typed) == 0 {
		r.mu.RUnlock()
		return
	}
	// Copy handlers to avoid holding the lock during callbacks.
	handlers := make([]Handler, 0, len(typed))
	for _, h := range typed {
		handlers = append(handlers, h)
	}
	r.mu.RUnlock()

	for _, h := range handlers {
		invoke(h, f, log)
	}
}

func invoke(h Handler, f *Frame, log zerolog.Logger) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().
				Str("frame_type", string(f.Type)).
				Interface("panic", rec).
				Msg("frame handler panicked")
		}
	}()
	h(f)
}

// clear removes all handlers. Called during Session.Disconnect.
func (r *handlerRegistry) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = make(map[FrameType]map[HandlerID]Handler)
}
