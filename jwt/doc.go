// Package jwt decodes access-token claims on the client side and, for test
// backends and tooling, mints tokens carrying the same claim set.
//
// # Claim set
//
// Access tokens carry sub (account email), nickname, role ("ROLE_USER" or an
// administrative role) and exp (Unix seconds). Everything else is ignored.
//
// # Verification
//
// A client normally cannot hold the backend signing key, so [Decoder] parses
// claims without verifying the signature unless a verification key is
// configured. Expiry is always enforced against the decoder clock.
//
// # What this package must NOT do
//
//   - Perform I/O or hold session state.
//   - Import goSession or api (no upward imports).
//   - Map role claims to account roles (the root package owns that mapping).
package jwt
