package main

import "semsim/internal/cli"

func main() {
	cli.Execute()
}
