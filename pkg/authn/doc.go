// Package authn issues and verifies the bearer tokens that carry a
// principal between requests.
//
// A Service signs HS256 tokens embedding the principal's subject, roles,
// permissions, and custom claims, and rebuilds the principal when a token
// comes back:
//
//	svc, err := authn.New(cfg.SigningKey,
//	    authn.WithIssuer("orders-api"),
//	    authn.WithTokenTTL(30*time.Minute),
//	)
//	if err != nil {
//	    return err
//	}
//
//	token, err := svc.Issue(&authz.Principal{
//	    Subject: "user_123",
//	    Roles:   []string{"admin"},
//	    Claims:  map[string]string{"tenant_id": "t_42"},
//	})
//
//	principal, err := svc.Verify(token)
//
// Verification enforces the signing algorithm, expiry, and, when
// configured, the issuer. Expired tokens fail with ErrExpiredToken so
// callers can tell clients to refresh; every other failure collapses to
// ErrInvalidToken. The service is safe for concurrent use.
package authn
