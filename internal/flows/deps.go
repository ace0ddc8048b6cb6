package flows

// Deps groups flow dependency sets. The Store builds this once and delegates
// each operation to the matching flow.
type Deps struct {
	SignIn  SignInDeps
	Logout  LogoutDeps
	Restore RestoreDeps
}
