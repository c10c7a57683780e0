package main

import "github.com/intakehq/intake/cmd"

func main() {
	cmd.Execute()
}
