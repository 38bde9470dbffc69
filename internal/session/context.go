package session

import "context"

type contextKey struct{}

// ContextWithManager stores m in ctx.
func ContextWithManager(ctx context.Context, m *Manager) context.Context {
	return context.WithValue(ctx, contextKey{}, m)
}

// FromContext returns the manager stored by ContextWithManager, or nil.
func FromContext(ctx context.Context) *Manager {
	m, _ := ctx.Value(contextKey{}).(*Manager)
	return m
}
