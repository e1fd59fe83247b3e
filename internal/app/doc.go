// Package app contains the core application logic. It defines the App, its
// configuration and the build lifecycle: loading source documents, running
// the reactor over them and rendering the published model, decoupled from
// any specific entrypoint like a CLI.
package app
