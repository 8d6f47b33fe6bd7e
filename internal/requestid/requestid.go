// Package requestid carries the per-request correlation id that the log
// handler attaches to every record.
package requestid

import (
	"context"

	"github.com/google/uuid"
)

// MaxLen bounds ids accepted from clients; they end up in every log line.
const MaxLen = 128

type ctxKey struct{}

func New() string {
	return uuid.NewString()
}

// Valid reports whether a client-supplied id can be reused as is:
// non-empty, at most MaxLen bytes, printable ASCII without spaces.
func Valid(id string) bool {
	if id == "" || len(id) > MaxLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return false
		}
	}
	return true
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns "" outside a request.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
