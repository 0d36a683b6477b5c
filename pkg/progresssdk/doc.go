/*
Package progresssdk is a client for the reading-progress service.

# Client vs Session

  - Client: unauthenticated operations (health probes) and Login
  - Session: operations on behalf of a logged in identity

	client := progresssdk.NewClient("http://localhost:2345")

	health, err := client.GetLiveness(ctx)

	session, err := client.Login(ctx, "a", "a")
	if err != nil {
		return err
	}
	defer session.Logout(ctx)

	err = session.Update(ctx, progresssdk.Update{
		Manga:   "One Piece",
		Source:  "mangadex",
		Chapter: 5,
	})

# Errors

Any non-success answer is returned as an *APIError carrying the status code
and the server's message:

	var apiErr *progresssdk.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
		// log in again
	}

Sessions are cookie based. Each Session owns its cookie jar, so several
sessions against the same server can coexist in one process.
*/
package progresssdk
