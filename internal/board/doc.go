// Package board keeps the client's copy of the task board in step with the
// server. The Synchronizer pairs every Gateway call with a Cache mutation;
// Columns, Stats and Detail are read-only projections of the Cache; Drag turns
// a drag gesture into a move.
package board
