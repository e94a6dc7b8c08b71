// Package confstack implements the value-resolution and access-reporting
// engine of a hierarchical, multi-source configuration library.
//
// Applications read typed configuration values from a precedence-ordered
// stack of providers — in-memory tables, environment variables, CLI
// arguments, directory-of-files secret mounts, and parsed structured files —
// through three access modes: a synchronous snapshot read, a one-shot async
// fetch, and a continuous watch. This package defines the shared key,
// value, and provider abstractions; concrete providers live in the
// provider/ subpackages, the precedence resolver in provider/multiprovider,
// the reader façade in reader, and access-event sinks in access.
package confstack
