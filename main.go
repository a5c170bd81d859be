package main

import "github.com/dhcgn/eml-sort/cmd"

func main() {
	cmd.Execute()
}
