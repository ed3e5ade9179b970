package stage

import "context"

// Checker is anything `kncleanup check` can probe for readiness.
type Checker interface {
	HealthCheck(context.Context) Health
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(context.Context) Health

func (f CheckerFunc) HealthCheck(ctx context.Context) Health { return f(ctx) }

// PingCheck reports name as healthy when ping succeeds.
func PingCheck(name string, ping func(context.Context) error) Checker {
	return CheckerFunc(func(ctx context.Context) Health {
		if err := ping(ctx); err != nil {
			return Unhealthy(name, err.Error())
		}
		return Healthy(name)
	})
}

// CheckAll runs every checker in order and reports whether all are ready.
func CheckAll(ctx context.Context, checkers ...Checker) ([]Health, bool) {
	results := make([]Health, 0, len(checkers))
	ready := true
	for _, c := range checkers {
		h := c.HealthCheck(ctx)
		if !h.Ready {
			ready = false
		}
		results = append(results, h)
	}
	return results, ready
}
