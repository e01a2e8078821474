package main

import "github.com/taskpilot/taskpilot/cmd"

func main() {
	cmd.Execute()
}
