package main

import "github.com/ari-wein/mcp-panther/cmd"

// Version can be set during build with -ldflags
var version = "dev"

func main() {
	cmd.SetVersion(version)
	cmd.Execute()
}
