package main

import "github.com/framemend/backend/internal/cli"

func main() {
	cli.Execute()
}
