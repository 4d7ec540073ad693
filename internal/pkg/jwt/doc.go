// Package jwt issues and verifies HS512 access tokens handed out once a user
// has passed both the password and the SMS code step, and carries verified
// claims through a request context.
package jwt
