// Package claude is a client for the claude.ai web service, authenticated
// with a browser session cookie.
//
// # Session
//
// New validates the cookie, pins the fixed request headers, and resolves the
// organization identifier once. Every later call reuses it:
//
//	c, err := claude.New(ctx, "activitySessionId=...; sessionKey=...", claude.DefaultConfig())
//	if errors.Is(err, claude.ErrAuthentication) {
//		// cookie expired
//	}
//
// # Messages
//
// SendMessage uploads attachments one by one, in the given order, then
// appends the prompt. The service answers with newline separated frames of
// the form `data: {"completion": "..."}`; the body is read in full and the
// completions are concatenated. A malformed frame fails the whole call with
// ErrDecode.
//
// All errors are *Error values carrying an ErrorCode. Nothing is retried.
package claude
