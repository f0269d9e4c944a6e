/*
Package claims models the verified claims of a token as an immutable,
ordered set with first-match lookup.

A Set is built once by the authentication layer, after it has
cryptographically verified the token, and is read-only from then on. The
package deliberately knows nothing about signatures or wire formats beyond
the FromToken constructor; validation is the caller's concern.
*/
package claims
