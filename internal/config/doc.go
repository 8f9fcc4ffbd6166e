// Package config provides configuration structures and utilities for warcsift.
// It defines the ingestion, filtering, feature, similarity and query settings,
// and loads them from defaults, a YAML file, the environment and CLI flags.
package config
