// Package capture decides which intercepted network responses matter, decodes
// their bodies and keeps them, in arrival order, until the session ends.
//
// Decode failures are expected: scrapers routinely see empty, truncated or
// compressed bodies. They drop the single response and are never returned as
// errors. Only misuse of the buffer itself is reported.
package capture
