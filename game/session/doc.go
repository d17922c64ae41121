// Package session keeps Ruber Taxi game sessions.
//
// Manager stores sessions in memory and, when built with
// NewManagerWithPersistence, mirrors them to a SessionPersistence. Each
// session owns its own engine so sessions never share state.
//
// Session IDs are 4 hex characters when generated. Caller-supplied IDs may
// use letters, digits, '-' and '_' only, since FilePersistence uses the ID
// as a file name.
//
// Usage:
//
//	persistence, _ := session.NewFilePersistence("sessions", configs)
//	manager := session.NewManagerWithPersistence(persistence, logger)
//	_ = manager.LoadPersistedSessions()
//
//	sess, err := manager.Create("", "classic", configs.GetDefault())
//	if err != nil {
//		log.Fatal(err)
//	}
//	sess.Engine.Step(engine.Input{Accelerate: true})
//	_ = manager.Save(sess.ID)
//
// A persisted session stores the config ID and the full engine state,
// including the random generator, so a reloaded session draws the same
// jobs it would have drawn without the restart.
package session
