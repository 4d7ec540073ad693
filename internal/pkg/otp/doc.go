// Package otp generates one-time numeric codes delivered out of band (SMS).
//
// Every digit is drawn independently and uniformly from crypto/rand. Codes
// are strings: leading zeros are part of the code and the length is exact.
package otp
