package goSession

import "context"

// Navigator moves the user to another route. Logout calls it with the login
// path and a successful SignIn with the home path.
type Navigator interface {
	Navigate(ctx context.Context, path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, path string)

func (f NavigatorFunc) Navigate(ctx context.Context, path string) {
	f(ctx, path)
}

type noopNavigator struct{}

func (noopNavigator) Navigate(context.Context, string) {}
