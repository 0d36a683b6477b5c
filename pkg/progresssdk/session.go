package progresssdk

import (
	"context"
	"net/http"
)

// Session is a logged in identity. It is safe for concurrent use.
type Session struct {
	client *Client
	http   *http.Client
}

// Update reports reading progress.
func (s *Session) Update(ctx context.Context, u Update) error {
	return s.UpdateRaw(ctx, u)
}

// UpdateRaw sends body as-is, for callers that need to send payloads the
// Update type can not express.
func (s *Session) UpdateRaw(ctx context.Context, body any) error {
	resp, err := s.client.do(ctx, s.http, http.MethodPost, "/update", body)
	if err != nil {
		return err
	}
	return checkOK(resp)
}

// Logout ends the session. The Session should not be used afterwards.
func (s *Session) Logout(ctx context.Context) error {
	resp, err := s.client.do(ctx, s.http, http.MethodPost, "/logout", nil)
	if err != nil {
		return err
	}
	return checkOK(resp)
}
