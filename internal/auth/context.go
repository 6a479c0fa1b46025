package auth

import "context"

type serviceContextKey struct{}

// ContextWithService stores the profile's Service in context.
func ContextWithService(ctx context.Context, svc *Service) context.Context {
	return context.WithValue(ctx, serviceContextKey{}, svc)
}

// ServiceFromContext extracts the profile's Service from context.
func ServiceFromContext(ctx context.Context) *Service {
	svc, _ := ctx.Value(serviceContextKey{}).(*Service)
	return svc
}
