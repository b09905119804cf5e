// Package transport carries frames between the two roles.
//
// The consumer binds a Router and the producer connects a Dealer. Both speak
// WebSocket over TCP: control tokens ("Hello", "Welcome", "Bye") travel as
// text messages and data frames as binary messages. The Router gives every
// accepted connection a ULID routing identity and keeps a two-state session
// per identity:
//
//	Unverified --"Hello"/"Welcome"--> Verified
//
// Only Verified identities may deliver data. Anything else from an
// Unverified identity is a protocol violation: the frame is dropped and the
// connection closed.
//
// Workers exchange frames with the tick drivers exclusively through Queue
// values. Sender loops block on Queue.Take and perform one socket write per
// item; receiver loops block on the socket and Put classified frames onto the
// inbound queue. Cancelling the context passed to Run stops all of them.
package transport
