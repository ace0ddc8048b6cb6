package flows

import "context"

// RestoreDeps captures restore dependencies. The mirror is optional.
type RestoreDeps struct {
	LoadMirror func(ctx context.Context) (string, error)
	Reissue    ReissueDeps
}

// RestoreResult extends ReissueResult with the mirrored token, if any, that
// was installed before the reissue round trip.
type RestoreResult struct {
	ReissueResult
	Provisional string
}

// RunRestore installs a still-valid mirrored token provisionally, then runs
// the reissue. The reissue outcome alone decides the session; the caller
// discards Provisional when it fails.
func RunRestore(ctx context.Context, epoch uint64, deps RestoreDeps) RestoreResult {
	var res RestoreResult

	if deps.LoadMirror != nil {
		if token, err := deps.LoadMirror(ctx); err == nil && token != "" {
			if _, _, derr := deps.Reissue.DecodeUser(token); derr == nil && deps.Reissue.Install(epoch, token) {
				res.Provisional = token
			}
		}
	}

	res.ReissueResult = RunReissue(ctx, epoch, deps.Reissue)
	return res
}
