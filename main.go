package main

import "reqsync/cmd"

func main() {
	cmd.Execute()
}
