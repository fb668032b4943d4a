package main

import "github.com/notargets/mshio/cmd"

func main() {
	cmd.Execute()
}
