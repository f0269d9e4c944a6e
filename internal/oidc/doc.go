// Package oidc fetches the issuer's well-known OIDC configuration to
// discover the userinfo endpoint.
package oidc
