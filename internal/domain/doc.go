// Package domain contains the account entities shared by every layer.
//
// A DatabaseUser is the full stored record. Its credential material sits in an
// embedded Credential, separate from the public User, so the presentation layer
// can hand out User values without ever touching the hash or salt.
package domain
