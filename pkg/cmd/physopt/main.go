// Copyright 2014 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// This is the entry point for the physopt binary.
package main

import "github.com/cockroachdb/physopt/pkg/cli"

func main() {
	cli.Main()
}
