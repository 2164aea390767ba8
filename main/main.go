package main

import "github.com/rawbytedev/anyref/internal/cli"

func main() {
	cli.Execute()
}
