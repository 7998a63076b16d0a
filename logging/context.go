package logging

import (
	"context"

	"go.viam.com/utils"
)

type debugModeKey struct{}

// EnableDebugMode returns a context under which C-prefixed log calls are emitted at debug level
// regardless of the logger's level. The tag is attached to nothing but marks the context; an
// empty tag gets a random one.
func EnableDebugMode(ctx context.Context, tag string) context.Context {
	if tag == "" {
		tag = utils.RandomAlphaString(6)
	}
	return context.WithValue(ctx, debugModeKey{}, tag)
}

// IsDebugMode reports whether ctx came from EnableDebugMode.
func IsDebugMode(ctx context.Context) bool {
	tag, ok := ctx.Value(debugModeKey{}).(string)
	return ok && tag != ""
}
