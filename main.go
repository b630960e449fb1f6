package main

import "github.com/douhashi/fuda/cmd"

func main() {
	cmd.Execute()
}
