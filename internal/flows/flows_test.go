package flows

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/MrEthical07/goSession/api"
	"github.com/MrEthical07/goSession/jwt"
)

var errBoom = errors.New("boom")

func decodeOK(email string) DecodeUserFunc {
	return func(string) (UserRecord, time.Time, error) {
		return UserRecord{Email: email, Nickname: "foo", Role: "USER"}, time.Unix(2000000000, 0), nil
	}
}

func decodeExpired(string) (UserRecord, time.Time, error) {
	return UserRecord{}, time.Time{}, fmt.Errorf("decode: %w", jwt.ErrExpired)
}

func TestRunSignInMissingInput(t *testing.T) {
	called := false
	deps := SignInDeps{PostSignIn: func(context.Context, string, string) (SignInResponse, error) {
		called = true
		return SignInResponse{}, nil
	}}

	for _, in := range [][2]string{{"", "pw"}, {"   ", "pw"}, {"a@b.com", ""}} {
		res := RunSignIn(context.Background(), in[0], in[1], deps)
		if res.Failure != SignInFailureMissingInput {
			t.Fatalf("input %q: expected missing input, got %v", in, res.Failure)
		}
	}
	if called {
		t.Fatal("backend must not be called for missing input")
	}
}

func TestRunSignInClassifiesErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want SignInFailureKind
	}{
		{"unauthorized", &api.Error{Status: http.StatusUnauthorized}, SignInFailureRejected},
		{"not found", fmt.Errorf("wrapped: %w", &api.Error{Status: http.StatusNotFound}), SignInFailureRejected},
		{"transport", errBoom, SignInFailureTransport},
	}
	for _, tc := range cases {
		deps := SignInDeps{PostSignIn: func(context.Context, string, string) (SignInResponse, error) {
			return SignInResponse{}, tc.err
		}}
		res := RunSignIn(context.Background(), "a@b.com", "pw", deps)
		if res.Failure != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, res.Failure)
		}
	}
}

func TestRunSignInTokenProblems(t *testing.T) {
	post := func(token string) func(context.Context, string, string) (SignInResponse, error) {
		return func(context.Context, string, string) (SignInResponse, error) {
			return SignInResponse{AccessToken: token}, nil
		}
	}

	res := RunSignIn(context.Background(), "a@b.com", "pw", SignInDeps{PostSignIn: post(" "), DecodeUser: decodeOK("a@b.com")})
	if res.Failure != SignInFailureNoToken {
		t.Fatalf("expected no token, got %v", res.Failure)
	}

	res = RunSignIn(context.Background(), "a@b.com", "pw", SignInDeps{PostSignIn: post("tok"), DecodeUser: decodeExpired})
	if res.Failure != SignInFailureExpired {
		t.Fatalf("expected expired, got %v", res.Failure)
	}

	res = RunSignIn(context.Background(), "a@b.com", "pw", SignInDeps{
		PostSignIn: post("tok"),
		DecodeUser: func(string) (UserRecord, time.Time, error) { return UserRecord{}, time.Time{}, jwt.ErrMalformed },
	})
	if res.Failure != SignInFailureDecode {
		t.Fatalf("expected decode failure, got %v", res.Failure)
	}
}

func TestRunSignInMergesResponseUser(t *testing.T) {
	var gotEmail string
	deps := SignInDeps{
		PostSignIn: func(_ context.Context, email, _ string) (SignInResponse, error) {
			gotEmail = email
			return SignInResponse{
				AccessToken: "tok",
				User:        &UserRecord{ID: 42, Email: "ignored@b.com", Nickname: "ignored", PhoneNumber: "010-1234-5678"},
			}, nil
		},
		DecodeUser: decodeOK("a@b.com"),
	}

	res := RunSignIn(context.Background(), "  a@b.com ", "pw", deps)
	if res.Failure != SignInFailureNone {
		t.Fatalf("unexpected failure %v", res.Failure)
	}
	if gotEmail != "a@b.com" {
		t.Fatalf("email should be trimmed, got %q", gotEmail)
	}
	if res.User.ID != 42 || res.User.PhoneNumber != "010-1234-5678" {
		t.Fatalf("expected id and phone from body, got %+v", res.User)
	}
	if res.User.Email != "a@b.com" || res.User.Nickname != "foo" {
		t.Fatalf("claims must win for email and nickname, got %+v", res.User)
	}
}

func TestRunLogoutClearsEvenWhenNotifyFails(t *testing.T) {
	var order []string
	res := RunLogout(context.Background(), LogoutDeps{
		Notify: func(context.Context) error { order = append(order, "notify"); return errBoom },
		Clear:  func(context.Context) error { order = append(order, "clear"); return nil },
	})
	if !errors.Is(res.NotifyErr, errBoom) || res.ClearErr != nil {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(order) != 2 || order[0] != "notify" || order[1] != "clear" {
		t.Fatalf("unexpected order %v", order)
	}
}

func TestRunReissueDecodeStrategy(t *testing.T) {
	deps := ReissueDeps{
		Reissue:    func(context.Context) (ReissueResponse, error) { return ReissueResponse{AccessToken: "fresh"}, nil },
		DecodeUser: decodeOK("a@b.com"),
		Install:    func(uint64, string) bool { t.Fatal("decode strategy must not install"); return false },
	}
	res := RunReissue(context.Background(), 1, deps)
	if res.Failure != ReissueFailureNone || res.AccessToken != "fresh" || res.User.Email != "a@b.com" {
		t.Fatalf("unexpected result %+v", res)
	}

	deps.DecodeUser = decodeExpired
	if res := RunReissue(context.Background(), 1, deps); res.Failure != ReissueFailureExpired {
		t.Fatalf("expected expired, got %v", res.Failure)
	}

	deps.Reissue = func(context.Context) (ReissueResponse, error) { return ReissueResponse{}, &api.Error{Status: 401} }
	if res := RunReissue(context.Background(), 1, deps); res.Failure != ReissueFailureRequest {
		t.Fatalf("expected request failure, got %v", res.Failure)
	}

	deps.Reissue = func(context.Context) (ReissueResponse, error) { return ReissueResponse{}, nil }
	if res := RunReissue(context.Background(), 1, deps); res.Failure != ReissueFailureNoToken {
		t.Fatalf("expected no token, got %v", res.Failure)
	}
}

func TestRunReissueProfileStrategy(t *testing.T) {
	var installed string
	deps := ReissueDeps{
		FetchProfile: true,
		Reissue:      func(context.Context) (ReissueResponse, error) { return ReissueResponse{AccessToken: "opaque"}, nil },
		Install:      func(_ uint64, tok string) bool { installed = tok; return true },
		Profile: func(context.Context) (UserRecord, error) {
			return UserRecord{ID: 7, Email: "a@b.com", Nickname: "foo", Role: "ADMIN"}, nil
		},
	}
	res := RunReissue(context.Background(), 3, deps)
	if res.Failure != ReissueFailureNone || installed != "opaque" || res.User.ID != 7 {
		t.Fatalf("unexpected result %+v installed=%q", res, installed)
	}
	if !res.ExpiresAt.IsZero() {
		t.Fatal("opaque token without ExpiresAt dep must have zero expiry")
	}

	deps.Install = func(uint64, string) bool { return false }
	if res := RunReissue(context.Background(), 3, deps); res.Failure != ReissueFailureStale {
		t.Fatalf("expected stale, got %v", res.Failure)
	}

	deps.Install = func(uint64, string) bool { return true }
	deps.Profile = func(context.Context) (UserRecord, error) { return UserRecord{}, errBoom }
	if res := RunReissue(context.Background(), 3, deps); res.Failure != ReissueFailureProfile {
		t.Fatalf("expected profile failure, got %v", res.Failure)
	}
}

func TestRunRestoreInstallsValidMirrorProvisionally(t *testing.T) {
	var installed []string
	deps := RestoreDeps{
		LoadMirror: func(context.Context) (string, error) { return "mirrored", nil },
		Reissue: ReissueDeps{
			Reissue:    func(context.Context) (ReissueResponse, error) { return ReissueResponse{}, errBoom },
			DecodeUser: decodeOK("a@b.com"),
			Install:    func(_ uint64, tok string) bool { installed = append(installed, tok); return true },
		},
	}

	res := RunRestore(context.Background(), 1, deps)
	if res.Provisional != "mirrored" {
		t.Fatalf("expected provisional mirror token, got %q", res.Provisional)
	}
	if res.Failure != ReissueFailureRequest {
		t.Fatalf("reissue outcome must decide, got %v", res.Failure)
	}
	if len(installed) != 1 {
		t.Fatalf("expected one install, got %v", installed)
	}
}

func TestRunRestoreSkipsExpiredOrMissingMirror(t *testing.T) {
	installs := 0
	base := ReissueDeps{
		Reissue:    func(context.Context) (ReissueResponse, error) { return ReissueResponse{AccessToken: "fresh"}, nil },
		DecodeUser: decodeExpired,
		Install:    func(uint64, string) bool { installs++; return true },
	}

	res := RunRestore(context.Background(), 1, RestoreDeps{
		LoadMirror: func(context.Context) (string, error) { return "old", nil },
		Reissue:    base,
	})
	if res.Provisional != "" || installs != 0 {
		t.Fatalf("expired mirror must not be installed: %+v", res)
	}
	if res.Failure != ReissueFailureExpired {
		t.Fatalf("expected expired reissued token, got %v", res.Failure)
	}

	res = RunRestore(context.Background(), 1, RestoreDeps{
		LoadMirror: func(context.Context) (string, error) { return "", errBoom },
		Reissue:    base,
	})
	if res.Provisional != "" {
		t.Fatal("missing mirror must not produce a provisional token")
	}
}

func TestServiceInitialized(t *testing.T) {
	if New(Deps{}).Initialized() {
		t.Fatal("empty service must not report initialized")
	}
	s := New(Deps{
		SignIn:  SignInDeps{PostSignIn: func(context.Context, string, string) (SignInResponse, error) { return SignInResponse{}, nil }},
		Restore: RestoreDeps{Reissue: ReissueDeps{Reissue: func(context.Context) (ReissueResponse, error) { return ReissueResponse{}, nil }}},
	})
	if !s.Initialized() {
		t.Fatal("wired service must report initialized")
	}
}
