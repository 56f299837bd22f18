package main

import "liv8/ghlm/cmd"

func main() {
	cmd.Execute()
}
