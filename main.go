package main

import "github.com/redjax/notedeck/cmd"

func main() {
	cmd.Execute()
}
