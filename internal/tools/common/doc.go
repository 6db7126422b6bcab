// Package common provides helpers shared by all tool packages: account
// argument extraction and the instrumented handler wrapper that records
// per-tool metrics.
package common
