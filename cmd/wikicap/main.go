package main

import "github.com/Carlsmeister/wikicap/internal/cli"

func main() {
	cli.Execute()
}
