// Package qasdk holds the wire types of the qaboard HTTP API and a small
// client for it.
//
// The request and response types are shared by the server handlers and the
// client, so both sides agree on field names by construction.
//
// Typical use:
//
//	c := qasdk.NewClient("http://localhost:8080")
//	s, err := c.Login(ctx, "alice", "Passw0rd!")
//	if err != nil {
//		return err
//	}
//	if s.MustResetPassword() {
//		err = s.RedeemOTP(ctx, "N3w-Passw0rd")
//	}
//	q, err := s.AskQuestion(ctx, "Where is the lab?", "Which room is lab three in?")
//
// Non-2xx responses come back as *APIError, so callers can switch on Code.
package qasdk
