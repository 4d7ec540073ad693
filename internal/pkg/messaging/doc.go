// Package messaging provides a broker-agnostic API for publishing and
// consuming messages over NATS, Kafka or an in-process broker.
//
// SMS dispatch requests and challenge audit events travel through it, so the
// process that issues a code does not have to be the one that talks to the
// SMS provider.
package messaging
