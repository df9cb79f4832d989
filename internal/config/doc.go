// Package config loads, normalizes, and validates the TOML configuration that
// drives the discovery pipeline: provider credentials, image search and
// validation settings, category rule locations, discovery queries, and
// notification topics.
//
// Loading resolves the path (explicit flag, then ~/.config/prospect, then a
// project-local prospect.toml), applies environment overrides for secrets,
// expands ~ in every path field, and rejects configurations that normalize
// cannot repair. All other packages receive a fully resolved *Config and never
// consult files or environment variables themselves.
package config
