package main

import "github.com/twiced-technology-gmbh/agenda/cmd"

func main() {
	cmd.Execute()
}
