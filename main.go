package main

import "github.com/ctxarchive/ctxarchive/cmd"

func main() {
	cmd.Execute()
}
