package upstream

import (
	"context"
	"sync"
)

// PhoneCode is a single-resolution rendezvous between the interactive
// gateway login and the HTTP endpoint delivering the one-time code. Exactly
// one waiter and one resolution exist per process lifetime; later Resolve
// calls are dropped.
type PhoneCode struct {
	once sync.Once
	ch   chan string
}

func NewPhoneCode() *PhoneCode {
	return &PhoneCode{ch: make(chan string, 1)}
}

func (p *PhoneCode) Resolve(code string) {
	p.once.Do(func() {
		p.ch <- code
	})
}

func (p *PhoneCode) Await(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case code := <-p.ch:
		return code, nil
	}
}
