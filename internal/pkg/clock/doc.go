// Package clock provides a tiny time abstraction.
//
// Challenge expiry is decided by comparing stored deadlines against Now, so
// code that issues or checks codes depends on Clocker rather than time.Now.
// Frozen lets tests walk through a challenge lifetime second by second.
package clock
