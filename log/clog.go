// Package log provides structured, request-scoped logging helpers used
// across the pipeline, plus a context.Context-aware verbose logger for
// code paths that don't carry a bare request ID.
package log

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/golang/glog"
)

type clogContextKeyType struct{}

var clogContextKey = clogContextKeyType{}

var defaultLogLevel glog.Level = 3

type metadata map[string]any

func init() {
	vFlag := flag.Lookup("v")
	if vFlag != nil {
		// nolint:errcheck
		vFlag.Value.Set(fmt.Sprintf("%d", defaultLogLevel))
	}
}

type VerboseLogger struct {
	level glog.Level
}

func V(level glog.Level) *VerboseLogger {
	return &VerboseLogger{level: level}
}

func (m metadata) Flat() []any {
	out := []any{}
	for k, v := range m {
		out = append(out, k)
		out = append(out, v)
	}
	return out
}

// WithLogValues returns a new context carrying the provided key/value
// pairs merged on top of any logging metadata already present.
func WithLogValues(ctx context.Context, args ...string) context.Context {
	oldMetadata, _ := ctx.Value(clogContextKey).(metadata)
	if oldMetadata == nil {
		oldMetadata = metadata{}
	}
	newMetadata := metadata{}
	for k, v := range oldMetadata {
		newMetadata[k] = v
	}
	for i := range args {
		if i%2 == 0 {
			continue
		}
		newMetadata[args[i-1]] = args[i]
	}
	return context.WithValue(ctx, clogContextKey, newMetadata)
}

func (v *VerboseLogger) logCtx(ctx context.Context, message string, args ...any) {
	if !glog.V(v.level) {
		return
	}
	var requestID string
	meta, _ := ctx.Value(clogContextKey).(metadata)
	if meta != nil {
		requestID, _ = meta["request_id"].(string)
	}
	allArgs := append([]any{}, meta.Flat()...)
	allArgs = append(allArgs, args...)
	allArgs = append(allArgs, "caller", caller(3))
	if requestID == "" {
		LogNoRequestID(message, allArgs...)
	} else {
		Log(requestID, message, allArgs...)
	}
}

func (v *VerboseLogger) LogCtx(ctx context.Context, message string, args ...any) {
	v.logCtx(ctx, message, args...)
}

func LogCtx(ctx context.Context, message string, args ...any) {
	V(defaultLogLevel).logCtx(ctx, message, args...)
}

// caller returns a path relative to the module root, e.g. "jobs/runner.go:58"
func caller(depth int) string {
	_, myfile, _, _ := runtime.Caller(0)
	rootDir := filepath.Join(filepath.Dir(myfile), "..")
	_, file, line, _ := runtime.Caller(depth)
	rel, _ := filepath.Rel(rootDir, file)
	return rel + ":" + strconv.Itoa(line)
}
