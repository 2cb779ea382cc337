package main

import "github.com/thisisdope/dlt/cmd"

func main() {
	cmd.Execute()
}
