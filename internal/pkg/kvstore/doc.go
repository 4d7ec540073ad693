// Package kvstore provides the short-lived key/value storage behind OTP
// challenges and login sessions.
//
// Three backends implement Store:
//
//   - memory: a process-local map, optionally bounded in size
//   - redis: shared between replicas, deadlines enforced by Redis itself
//   - bbolt: a single-file store for single-node deployments that must
//     survive restarts
//
// JSON[T] layers typed, prefixed access over any backend so several logical
// views can share one physical store.
package kvstore
