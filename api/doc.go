// Package api provides the HTTP REST API for Ruber Taxi.
//
// Routes are registered on a gorilla/mux router and all bodies are JSON.
//
// Sessions:
//   - POST   /api/sessions                    create a session ({"config_id": "classic"})
//   - GET    /api/sessions                    list sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET    /api/sessions/unified            aggregate view (?configName= or ?sessionIds=a,b)
//   - GET    /api/sessions/{id}               session info with snapshot and totals
//   - DELETE /api/sessions/{id}               retire a session
//
// Driving:
//   - GET  /api/sessions/{id}/state           current snapshot
//   - POST /api/sessions/{id}/drive           hold an input for N ticks
//   - POST /api/sessions/{id}/jobs/toggle     pause or resume job offers
//   - POST /api/sessions/{id}/reset           start a new run
//   - GET  /api/sessions/{id}/tiles/{x}/{y}   describe one map tile
//
// Configs and scores:
//   - GET  /api/configs                       list configs
//   - POST /api/configs                       save a config (?id= or derived from name)
//   - GET  /api/configs/{name}                load one config
//   - GET  /api/scores                        high scores (?config=&limit=)
//
// A drive request looks like:
//
//	{
//	  "input": {"accelerate": true, "steer_left": true},
//	  "ticks": 120,
//	  "stop_on": ["passenger_boarded", "job_completed"],
//	  "stop_on_blocked": true
//	}
//
// Errors are returned as {"error": "..."} with 400 for bad input, 404 for
// unknown sessions or configs and 500 otherwise.
//
// GET /ws?session={id} upgrades to a WebSocket fed by the transport/websocket
// hub. Every state-changing REST call pushes the new snapshot to it.
package api
