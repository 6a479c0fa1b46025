package guard

import (
	"context"
	"net/http"
)

type routeContextKey struct{}

// ContextWithRoute stores the allowed route in context.
func ContextWithRoute(ctx context.Context, rt Route) context.Context {
	return context.WithValue(ctx, routeContextKey{}, rt)
}

// RouteFromContext extracts the allowed route from context.
func RouteFromContext(ctx context.Context) (Route, bool) {
	rt, ok := ctx.Value(routeContextKey{}).(Route)
	return rt, ok
}

// Middleware guards page requests. Allowed navigations reach next with the
// route in context; everything else is answered with a 303 to the decided
// location, which the browser then navigates to as a fresh, guarded request.
func (g *Guard) Middleware(lookup func(r *http.Request) Session) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sess Session
			if lookup != nil {
				sess = lookup(r)
			}
			rt, d := g.Decide(r.Context(), sess, r.URL.Path)
			if !d.Allowed() {
				http.Redirect(w, r, d.Location, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithRoute(r.Context(), rt)))
		})
	}
}
