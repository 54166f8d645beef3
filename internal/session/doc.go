// Package session holds the persisted state of one pipeline run: the
// Session entity, its per-phase records, and a filesystem store that
// keeps one exclusively-owned directory per session.
//
// Every mutation produces a full snapshot that the store writes
// atomically (temp file then rename), so a crash mid-write never
// corrupts the persisted state and a resumed run always sees the last
// durable phase transition.
package session
