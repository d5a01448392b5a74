// Package notify fans change events out to subscribers over channels.
//
// Publishers never block: an event is dropped for a subscriber whose buffer
// is full. Subscribers that need every change should re-read state after
// each event instead of treating events as a log.
package notify
