package main

import "github.com/hikarile/ToyoAgent/internal/cli"

func main() {
	cli.Run()
}
