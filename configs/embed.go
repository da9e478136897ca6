// Package configs provides embedded configuration templates for nativecore.
//
// Templates are embedded at build time so that `nativecore config init`
// works from any distribution (source builds and binary releases).
//
// Template files:
//   - user-config.example.yaml: machine-wide settings (resource dir, levels)
//   - project-config.example.yaml: per-project settings (overrides, components)
//
// Configuration hierarchy (see internal/config Load):
//  1. Hardcoded defaults
//  2. User config (~/.config/nativecore/config.yaml)
//  3. Project config (.nativecore.yaml)
//  4. Project .env file
//  5. Environment variables
package configs

import _ "embed"

// UserConfigTemplate is written by `nativecore config init`.
//
//go:embed user-config.example.yaml
var UserConfigTemplate string

// ProjectConfigTemplate is written by `nativecore config init --project`.
//
//go:embed project-config.example.yaml
var ProjectConfigTemplate string
