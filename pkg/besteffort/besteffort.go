// Package besteffort runs auxiliary side effects whose failures must be
// logged and discarded rather than returned to the caller.
package besteffort

import (
	"context"
	"fmt"

	"github.com/jwalitptl/procurement-api/pkg/logger"
)

// Run executes fn and reports whether it succeeded. Errors and panics are
// logged under op with the given key/value fields and never escape.
func Run(ctx context.Context, log *logger.Logger, op string, fn func(ctx context.Context) error, fields ...interface{}) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Error(fmt.Errorf("panic: %v", r), op+" panicked", fields...)
			ok = false
		}
	}()

	if err := fn(ctx); err != nil {
		log.Error(err, op+" failed", fields...)
		return false
	}
	return true
}
