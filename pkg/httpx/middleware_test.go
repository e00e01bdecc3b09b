package httpx_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/qaboard/pkg/cryptox"
	"github.com/aussiebroadwan/qaboard/pkg/httpx"
	"github.com/aussiebroadwan/qaboard/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const issuer = "https://qaboard.test"

func newSigner(t *testing.T) (*jwtx.EdDSASigner, jwtx.Verifier) {
	t.Helper()
	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA("k1", pemKey)
	require.NoError(t, err)
	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddSigner(signer))
	return signer, jwtx.NewVerifierEdDSA(keys, issuer)
}

func bearer(t *testing.T, s jwtx.Signer, role string, amr string, ttl time.Duration) string {
	t.Helper()
	tok, err := s.Sign(jwtx.NewSessionClaims("01J0000000000000000000USER", "sid", "alice", role,
		[]string{amr}, ttl, issuer, time.Now().UTC()))
	require.NoError(t, err)
	return "Bearer " + tok
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(okHandler, mw("a"), mw("b"), mw("c"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"a", "b", "c"}, order)
}

func TestAuthnMiddleware(t *testing.T) {
	signer, verifier := newSigner(t)

	var gotUser, gotRole string
	h := httpx.AuthnMiddleware(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = httpx.Username(r.Context())
		gotRole = httpx.Role(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	do := func(authz string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if authz != "" {
			req.Header.Set("Authorization", authz)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	t.Run("valid token", func(t *testing.T) {
		rec := do(bearer(t, signer, "student", jwtx.AMRPassword, time.Minute))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "alice", gotUser)
		require.Equal(t, "student", gotRole)
	})

	t.Run("missing token", func(t *testing.T) {
		rec := do("")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), `error="invalid_token"`)
	})

	t.Run("expired token", func(t *testing.T) {
		rec := do(bearer(t, signer, "student", jwtx.AMRPassword, -time.Minute))
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		var body httpx.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "token expired", body.ErrorDescription)
	})

	t.Run("garbage token", func(t *testing.T) {
		require.Equal(t, http.StatusUnauthorized, do("Bearer abc.def.ghi").Code)
	})
}

func TestRoleAndAMRGuards(t *testing.T) {
	signer, verifier := newSigner(t)

	serve := func(h http.Handler, authz string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", authz)
		rec := httptest.NewRecorder()
		httpx.AuthnMiddleware(verifier)(h).ServeHTTP(rec, req)
		return rec.Code
	}

	adminOnly := httpx.RequireRole("admin")(okHandler)
	require.Equal(t, http.StatusOK, serve(adminOnly, bearer(t, signer, "admin", jwtx.AMRPassword, time.Minute)))
	require.Equal(t, http.StatusForbidden, serve(adminOnly, bearer(t, signer, "staff", jwtx.AMRPassword, time.Minute)))

	noOTP := httpx.RejectAMR(jwtx.AMROTP)(okHandler)
	require.Equal(t, http.StatusOK, serve(noOTP, bearer(t, signer, "user", jwtx.AMRPassword, time.Minute)))
	require.Equal(t, http.StatusForbidden, serve(noOTP, bearer(t, signer, "user", jwtx.AMROTP, time.Minute)))

	otpOnly := httpx.RequireAMR(jwtx.AMROTP)(okHandler)
	require.Equal(t, http.StatusOK, serve(otpOnly, bearer(t, signer, "user", jwtx.AMROTP, time.Minute)))
	require.Equal(t, http.StatusForbidden, serve(otpOnly, bearer(t, signer, "user", jwtx.AMRPassword, time.Minute)))
}

type loginBody struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
}

func TestDecodeJSON(t *testing.T) {
	decode := func(body string) (loginBody, error) {
		var dst loginBody
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		err := httpx.DecodeJSON(httptest.NewRecorder(), req, &dst)
		return dst, err
	}

	got, err := decode(`{"username":"alice"}`)
	require.NoError(t, err)
	require.Equal(t, "alice", got.Username)

	_, err = decode(`{"username":""}`)
	require.ErrorIs(t, err, httpx.ErrInvalidBody)
	require.Contains(t, err.Error(), "username is required")

	_, err = decode(`{"username":"a","email":"nope"}`)
	require.ErrorContains(t, err, "email must be a valid email")

	_, err = decode(`{"username":"a","extra":1}`)
	require.ErrorIs(t, err, httpx.ErrInvalidBody)

	_, err = decode(``)
	require.ErrorIs(t, err, httpx.ErrInvalidBody)
}
