package main

import "github.com/mcoot/hintrush-go/internal/cli"

func main() {
	cli.Execute()
}
