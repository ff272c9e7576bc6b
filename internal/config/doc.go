// Package config provides the configuration of treedoc runs.
//
// Settings are layered, higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  4. Command Line Flags      │  ← Highest priority (applied by cmd)
//	├─────────────────────────────┤
//	│  3. Environment Variables   │  ← TREEDOC_*
//	├─────────────────────────────┤
//	│  2. Configuration File      │  ← -config (TOML, YAML or JSON)
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// # Sub-packages
//
//   - loader: file loading (TOML, YAML, JSON, @include) and environment variables
//
// # Example
//
//	cfg, err := config.Load(config.WithFile("treedoc.toml"))
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.Log.Level)
package config
