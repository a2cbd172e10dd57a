// Package config resolves the display options of a reporting session.
//
// Options arrive in layers, each supplying any subset of the recognised
// option names:
//   - compiled-in defaults
//   - a config file (.dromus.yaml, dromus.yaml, .dromus.json, dromus.json)
//   - DROMUS_* environment variables
//   - command-line flags
//
// Later layers win option by option. The merged layer is validated once and
// frozen into a Profile, which is passed explicitly to every renderer.
package config
