// Package cli turns command-line arguments into an app.Config. Usage errors
// are reported as *ExitError carrying the process exit code; --help and a
// missing source path print usage and ask the caller to exit cleanly.
package cli
