package typegraph

import (
	"context"
	"errors"
)

// Middleware intercepts a field resolution. Middleware runs in declaration
// order, outermost-declared first, before the underlying resolver. Exactly
// one of next's behaviors may fire per invocation:
//
//   - next.Proceed() continues to the next middleware or the resolver;
//   - next.Resolve(v) short-circuits with v as the field result, skipping
//     remaining middleware and the resolver;
//   - next.Fail(err) aborts the chain, surfacing err as the field's
//     resolution error.
//
// Returning without invoking next is equivalent to Proceed.
type Middleware func(ctx context.Context, args map[string]any, next *Next)

type nextOutcome uint8

const (
	outcomeContinue nextOutcome = iota
	outcomeReplace
	outcomeFail
)

// Next carries the three-way continuation handed to a Middleware.
type Next struct {
	fired   bool
	outcome nextOutcome
	value   any
	err     error
}

// Proceed continues the chain.
func (n *Next) Proceed() { n.set(outcomeContinue, nil, nil) }

// Resolve short-circuits the chain with value as the field result.
func (n *Next) Resolve(value any) { n.set(outcomeReplace, value, nil) }

// Fail aborts the chain with err as the field's resolution error.
func (n *Next) Fail(err error) {
	if err == nil {
		err = errors.New("middleware aborted field resolution")
	}
	n.set(outcomeFail, nil, err)
}

func (n *Next) set(outcome nextOutcome, value any, err error) {
	if n.fired {
		panic("typegraph: middleware invoked next more than once")
	}
	n.fired = true
	n.outcome = outcome
	n.value = value
	n.err = err
}

// runChain drives the middleware chain and, if it reaches the end, invokes
// resolve for the underlying resolver.
func runChain(ctx context.Context, args map[string]any, chain []Middleware, resolve func() (any, error)) (any, error) {
	for _, mw := range chain {
		next := &Next{}
		mw(ctx, args, next)
		switch next.outcome {
		case outcomeReplace:
			return next.value, nil
		case outcomeFail:
			return nil, next.err
		}
	}
	return resolve()
}
