package main

import (
	relaycmd "github.com/initializ/copilot-relay/cmd"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	relaycmd.SetVersionInfo(version, commit)
	relaycmd.Execute()
}
