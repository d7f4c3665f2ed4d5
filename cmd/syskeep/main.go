/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/
package main

import "github.com/syskeep/syskeep/pkg/cli"

func main() {
	cli.Execute()
}
