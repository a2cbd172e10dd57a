// Package cmd implements the dromus CLI commands using Cobra.
//
// Available commands:
//   - report: Render go test -json output from stdin, files or a followed file
//   - config: Print the resolved reporter options
//   - init: Write a config file with the default options
//   - version: Show dromus version information
//   - completion: Generate shell completion scripts
//
// Options are layered: defaults, then the config file, then DROMUS_*
// environment variables, then flags given on the command line.
package cmd
