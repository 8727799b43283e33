// Package events carries progress, log and completion messages from
// long-running launcher operations to their caller.
package events

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

type Kind int

const (
	KindProgress Kind = iota + 1
	KindLog
	KindDone
)

type Event struct {
	Kind    Kind
	Percent int
	Message string
	// Success is meaningful for KindDone only.
	Success bool
}

// Emitter sends events on behalf of a single operation.
// A nil *Emitter discards everything.
type Emitter struct {
	ch  chan<- Event
	log logrus.FieldLogger
}

func NewEmitter(ch chan<- Event, log logrus.FieldLogger) *Emitter {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Emitter{ch: ch, log: log}
}

func (e *Emitter) Progress(percent int, message string) {
	if e == nil {
		return
	}
	e.ch <- Event{Kind: KindProgress, Percent: percent, Message: message}
}

func (e *Emitter) Logf(format string, args ...interface{}) {
	if e == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	e.log.Debug(msg)
	e.ch <- Event{Kind: KindLog, Message: msg}
}

func (e *Emitter) done(success bool, message string) {
	e.ch <- Event{Kind: KindDone, Success: success, Message: message}
}

// Func is the body of an operation run by Go. The returned message is used
// for the completion event on success.
type Func func(ctx context.Context, em *Emitter) (string, error)

// Go runs fn on its own goroutine. The returned channel delivers every
// event fn emits followed by exactly one KindDone event, then closes.
// The caller must drain it.
func Go(ctx context.Context, log logrus.FieldLogger, fn Func) <-chan Event {
	ch := make(chan Event, 16)
	em := NewEmitter(ch, log)
	go func() {
		defer close(ch)
		msg, err := fn(ctx, em)
		if err != nil {
			em.Logf("error: %v", err)
			em.done(false, err.Error())
			return
		}
		em.done(true, msg)
	}()
	return ch
}

// Wait drains ch, passing every non-terminal event to fn, and returns the
// completion event.
func Wait(ch <-chan Event, fn func(Event)) Event {
	var last Event
	for ev := range ch {
		if ev.Kind == KindDone {
			last = ev
			continue
		}
		if fn != nil {
			fn(ev)
		}
	}
	return last
}
