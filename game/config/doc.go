// Package config loads game configurations from a directory of JSON files.
//
// A config's ID is its file name without ".json". The map is either inline
// ("map") or in a separate file ("map_file", resolved against the config
// directory). Loading a config also loads and validates its map, so a
// config that loads is one an engine can be built from.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	cfg, err := manager.LoadConfig("classic")
//	infos, err := manager.ListConfigs()
//
// Errors wrap ErrConfigNotFound or ErrInvalidConfig; map problems also
// carry a *tilemap.MapLoadError.
package config
