package main

import "github.com/agencyops/chattersync/cli"

func main() {
	cli.Execute()
}
