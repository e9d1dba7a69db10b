package main

import "github.com/finwatch-app/finwatch/internal/cli"

func main() {
	cli.Execute()
}
