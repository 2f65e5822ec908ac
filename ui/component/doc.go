// Package component draws the four screen regions into a screen.Buffer:
// Header, MessageList, Input and StatusBar. Components hold only view state
// (scroll offset, status text); the content they draw is passed in on every
// render as a read-only snapshot, so a frame never observes a half-applied
// update.
package component
