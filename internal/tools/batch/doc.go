// Package batch provides helpers for tools that operate on one or many
// message IDs: argument parsing for string-or-array parameters, per-item
// result collection, and chunking for Gmail batch endpoints.
package batch
