// Package obs carries request IDs through contexts and logs operation
// timings tagged with them.
package obs

import (
	"context"
	"fmt"
	"log"
	"time"
)

type ctxKey struct{}

// WithRequestID returns a copy of ctx carrying id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestID returns the request ID stored in ctx, or "" outside a request.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Time returns a func that logs one line for op when called: the request
// ID, the elapsed microseconds and, when *errp is non-nil, the error.
// Pass the caller's named error so a failure reaches the log:
//
//	defer obs.Time(ctx, "zipcode.Matching")(&err)
func Time(ctx context.Context, op string) func(errp *error) {
	start := time.Now()

	return func(errp *error) {
		line := fmt.Sprintf("req_id=%s op=%s dur=%dus", RequestID(ctx), op, time.Since(start).Microseconds())
		if errp != nil && *errp != nil {
			line += fmt.Sprintf(" err=%q", (*errp).Error())
		}
		log.Print(line)
	}
}
