// Package mcp exposes Ruber Taxi to AI agents over the Model Context Protocol.
//
// The Client is a thin proxy: every tool call becomes a request against the
// REST API, so an agent sees exactly the state a browser or the desktop
// client would see.
//
// Tools:
//   - create_session, get_session, list_sessions
//   - game_state: formatted snapshot
//   - drive: hold an input for N ticks with optional stop conditions
//   - toggle_jobs, reset_game
//   - describe_tile: inspect one tile by column and row
//   - list_configs, high_scores, game_instructions
//
// Transport Modes:
//   - Stdio: Client.Run serves the tools on stdin/stdout
//   - HTTP: GetMCPServer().HandleMessage behind POST /mcp on the main server
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := client.Run(); err != nil {
//		log.Fatal().Err(err).Msg("mcp stdio")
//	}
package mcp
