// Package auth provides the authentication and request-authorization core
// for a trading-platform backend: bearer token issuance and verification,
// credential hashing, user storage, and the HTTP glue between them.
//
// Token lifecycle:
//   - TokenService signs HMAC tokens carrying a minimal claim schema (the
//     subject and expiration are mandatory) plus role and opaque metadata
//     extensions. Validation collapses every decode failure into a single
//     rejection so callers never learn why a token was refused.
//   - Auther turns verified credentials into LoginResult bundles and
//     resolves claim subjects back into live identities through a fresh
//     store lookup, so tokens for deleted or disabled accounts die at the
//     door.
//
// Enforcement:
//   - middleware/authware guards go-router endpoints: it extracts the
//     bearer credential, validates it, resolves the identity, and attaches
//     both to the request scope before the handler runs.
//   - middleware/errorware sits outermost, translating every failure
//     (panics included) into a structured JSON envelope with a correlation
//     id. Response detail is gated by deployment environment.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by Auther to
//     describe login and registration events. Sinks run best-effort
//     (errors are logged) so you can forward to a database or queue
//     without blocking authentication.
package auth
