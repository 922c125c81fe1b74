// Package events carries study-session lifecycle events from the services
// to the components that react to them.
//
// Services emit a SessionEvent through an EventEmitter. The Bus publishes
// it on an in-process watermill channel, and each registered EventHandler
// receives it on its own subscription. NATSForwarder republishes events to
// NATS JetStream.
//
// Handler failures are logged and never reach the emitting request.
package events
