package main

import "objrecon/internal/cli"

func main() {
	cli.Execute()
}
