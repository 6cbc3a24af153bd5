package main

import "cvsync/cmd"

func main() {
	cmd.Execute()
}
