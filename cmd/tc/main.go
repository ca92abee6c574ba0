package main

import "github.com/zsiec/stimecode/internal/cli"

func main() {
	cli.Execute()
}
