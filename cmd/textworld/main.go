package main

import "github.com/mcoot/textworld/internal/cli"

func main() {
	cli.Execute()
}
