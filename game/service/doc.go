// Package service is the game's business layer. It sits between the
// transports (HTTP, WebSocket, MCP, CLI) and the engine.
//
// GameService owns session lifecycle, batched driving (Drive), real-time
// advancement (Advance), configuration access and the high-score table.
// SessionManager, ConfigManager and ScoreStore are the storage seams; the
// session, config and highscore packages implement them.
//
// Usage:
//
//	svc := service.NewGameService(sessions, configs,
//		service.WithScoreStore(scores),
//		service.WithLogger(logger),
//	)
//
//	info, err := svc.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	res, err := svc.Drive(ctx, info.ID, service.DriveRequest{
//		Input:  engine.Input{Accelerate: true},
//		Ticks:  120,
//		StopOn: []engine.EventType{engine.EventPassengerBoarded},
//	})
//
// Drive runs at most engine.MaxDriveTicks ticks per call and reports why it
// stopped. A run is written to the score table when it ends by starvation,
// reset or session deletion, if it served at least one fare.
package service
