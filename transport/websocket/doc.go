// Package websocket provides the real-time transport for Ruber Taxi.
//
// A Hub tracks the clients connected to each session and fans snapshots out
// to them. A Driver turns the hub into a live game: it advances every
// watched session on a fixed clock using the keys its clients hold, then
// broadcasts the resulting snapshot.
//
// Message Protocol:
//   - Outgoing: {"session_id": "ab12", "event": "state_update", "snapshot": {...}}
//   - Incoming: {"type": "input", "input": {"accelerate": true, "handbrake": true}}
//
// Level inputs (pedals, steering) are held until the next input message.
// Edge inputs (handbrake, toggle_jobs) are delivered to exactly one frame.
//
// Clients pick their session with ?session=ab12 when connecting. A client
// that cannot keep up with the broadcast rate is dropped.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//
//	driver := websocket.NewDriver(gameService, hub, 0, logger)
//	go driver.Run(ctx)
//
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
package websocket
