package flows

import "context"

// Service is the centralized flow runner built once by the Store.
type Service struct {
	deps Deps
}

// New returns a flow service with immutable dependency wiring.
func New(deps Deps) Service {
	return Service{deps: deps}
}

// Initialized reports whether the service has been wired with flow deps.
func (s Service) Initialized() bool {
	return s.deps.SignIn.PostSignIn != nil && s.deps.Restore.Reissue.Reissue != nil
}

func (s Service) SignIn(ctx context.Context, email, password string) SignInResult {
	return RunSignIn(ctx, email, password, s.deps.SignIn)
}

func (s Service) Logout(ctx context.Context) LogoutResult {
	return RunLogout(ctx, s.deps.Logout)
}

func (s Service) Reissue(ctx context.Context, epoch uint64) ReissueResult {
	return RunReissue(ctx, epoch, s.deps.Restore.Reissue)
}

func (s Service) Restore(ctx context.Context, epoch uint64) RestoreResult {
	return RunRestore(ctx, epoch, s.deps.Restore)
}
