package claude

import (
	"context"
	"errors"
	"net/http"
)

// resolveOrganization lists the organizations visible to the credential and
// returns the first one. Every failure, including transport errors and a
// malformed body, is reported as CodeAuthentication.
func (c *Client) resolveOrganization(ctx context.Context) (orgID string, err error) {
	const op = "resolve_organization"
	ctx, finish := c.startOp(ctx, op)
	defer func() { finish(err) }()

	var orgs []Organization
	if err := c.doJSON(ctx, op, http.MethodGet, "/api/organizations", nil, &orgs); err != nil {
		var cerr *Error
		status := 0
		if errors.As(err, &cerr) {
			status = cerr.Status
		}
		return "", &Error{
			Code:    CodeAuthentication,
			Op:      op,
			Message: "cookies are expired or invalid",
			Status:  status,
			Err:     err,
		}
	}

	if len(orgs) == 0 || orgs[0].UUID == "" {
		return "", newError(CodeAuthentication, op, "no organization returned for credential", nil)
	}
	return orgs[0].UUID, nil
}
