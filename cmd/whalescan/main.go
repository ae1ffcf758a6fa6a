package main

import (
	"solana-whale-scan/internal/cli"
)

func main() {
	cli.Execute()
}
