// Package session provides session management for the Fifteen Puzzle.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session lifecycle management
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the in-memory registry that implements service.SessionManager.
// Each service.Session owns one puzzle engine and at most one elapsed-time
// ticker; deleting or expiring a session stops its ticker.
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs for easy reference, generated with
// crypto/rand. Lookups are case-insensitive.
//
// Usage:
//
//	manager := session.NewManager(engine.WithLogger(log.Default()))
//
//	sess, err := manager.Create("", config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sess.ID)
//
//	// Drop sessions idle for more than a day
//	removed := manager.CleanupExpiredSessions(24 * time.Hour)
package session
