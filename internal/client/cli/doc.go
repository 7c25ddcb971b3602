// Package cli provides the GophForge command-line client.
//
// With a command on the command line (create, list, get, delete, generate,
// health) it runs that one command and exits. Without one it starts an
// interactive REPL that prompts for the same operations. See App.Run.
package cli
