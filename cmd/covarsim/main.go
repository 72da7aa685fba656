package main

import "covarsim/internal/cli"

func main() {
	cli.Execute()
}
