package flows

import "context"

// LogoutDeps captures logout dependencies. Notify tells the backend; Clear
// drops the token, mirror and user.
type LogoutDeps struct {
	Notify func(ctx context.Context) error
	Clear  func(ctx context.Context) error
}

type LogoutResult struct {
	NotifyErr error
	ClearErr  error
}

// RunLogout notifies the backend first, while the bearer token is still
// installed, then clears local state whatever the notification returned.
func RunLogout(ctx context.Context, deps LogoutDeps) LogoutResult {
	var res LogoutResult
	if deps.Notify != nil {
		res.NotifyErr = deps.Notify(ctx)
	}
	if deps.Clear != nil {
		res.ClearErr = deps.Clear(ctx)
	}
	return res
}
