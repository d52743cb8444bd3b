//go:build tools

// Package tools pins the versions of build tooling run with go run.
package tools

import (
	_ "github.com/golangci/golangci-lint/cmd/golangci-lint"
)
