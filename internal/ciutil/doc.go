// Package ciutil detects CI environments and resolves the environment
// variables test tooling reads, falling back through legacy names.
package ciutil
