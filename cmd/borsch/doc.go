// Package main hosts the borsch CLI entrypoint and command graph.
//
// The Cobra command tree submits Borsch programs to a playground service,
// streams their output as it arrives, lists the language versions the
// service accepts, and scaffolds configuration. Job lifecycle lives in
// internal/execution; commands here only render its snapshots.
package main
