package main

import "driftcap/cmd"

func main() {
	cmd.Execute()
}
