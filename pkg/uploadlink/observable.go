package uploadlink

import (
	"context"
	"sync"

	"go.uber.org/atomic"
)

// Observer receives the outcome of one request: either Next followed by
// Complete, or Error. A partial success delivers Next followed by Error.
type Observer interface {
	Next(result *Result)
	Error(err error)
	Complete()
}

// ObserverFuncs is an Observer built from optional callbacks.
type ObserverFuncs struct {
	NextFunc     func(result *Result)
	ErrorFunc    func(err error)
	CompleteFunc func()
}

func (o ObserverFuncs) Next(result *Result) {
	if o.NextFunc != nil {
		o.NextFunc(result)
	}
}

func (o ObserverFuncs) Error(err error) {
	if o.ErrorFunc != nil {
		o.ErrorFunc(err)
	}
}

func (o ObserverFuncs) Complete() {
	if o.CompleteFunc != nil {
		o.CompleteFunc()
	}
}

const (
	subscriptionActive int32 = iota
	subscriptionDelivered
	subscriptionCancelled
)

type subscription struct {
	observer Observer
	state    *atomic.Int32
	cancel   context.CancelFunc
	once     sync.Once
}

// deliver notifies the observer unless the subscription was cancelled or
// already delivered.
func (s *subscription) deliver(result *Result, err error) {
	if !s.state.CompareAndSwap(subscriptionActive, subscriptionDelivered) {
		return
	}
	if result != nil {
		s.observer.Next(result)
	}
	if err != nil {
		s.observer.Error(err)
		return
	}
	s.observer.Complete()
}

func (s *subscription) unsubscribe() {
	s.once.Do(func() {
		s.state.CompareAndSwap(subscriptionActive, subscriptionCancelled)
		s.cancel()
	})
}

// Subscribe sends op in the background and reports the outcome to observer.
// The returned function cancels the request, it is safe to call more than
// once and from any goroutine. No notification is delivered once it was
// called. Preparation errors are delivered before Subscribe returns.
func (l *Link) Subscribe(ctx context.Context, op *Operation, observer Observer) (unsubscribe func()) {
	ctx, cancel := context.WithCancel(ctx)
	sub := &subscription{
		observer: observer,
		state:    atomic.NewInt32(subscriptionActive),
		cancel:   cancel,
	}

	prepared, err := l.prepare(op)
	if err != nil {
		sub.deliver(nil, err)
		cancel()
		return sub.unsubscribe
	}

	go func() {
		defer cancel()
		result, err := l.dispatch(ctx, prepared)
		sub.deliver(result, err)
	}()

	return sub.unsubscribe
}

// Handle is a request in flight.
type Handle struct {
	done        chan struct{}
	once        sync.Once
	result      *Result
	err         error
	unsubscribe func()
}

// Request sends op in the background.
func (l *Link) Request(ctx context.Context, op *Operation) *Handle {
	h := &Handle{done: make(chan struct{})}
	h.unsubscribe = l.Subscribe(ctx, op, &handleObserver{handle: h})
	return h
}

func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the request finished or was cancelled.
func (h *Handle) Wait() (*Result, error) {
	<-h.done
	return h.result, h.err
}

// Cancel aborts the request. Wait returns context.Canceled afterwards unless
// the request had already finished. Calling Cancel again has no effect.
func (h *Handle) Cancel() {
	h.unsubscribe()
	h.finish(nil, context.Canceled)
}

func (h *Handle) finish(result *Result, err error) {
	h.once.Do(func() {
		h.result = result
		h.err = err
		close(h.done)
	})
}

type handleObserver struct {
	handle *Handle
	result *Result
}

func (o *handleObserver) Next(result *Result) {
	o.result = result
}

func (o *handleObserver) Error(err error) {
	o.handle.finish(o.result, err)
}

func (o *handleObserver) Complete() {
	o.handle.finish(o.result, nil)
}
