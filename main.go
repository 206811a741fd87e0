package main

import "github.com/KaramelBytes/waterlens-cli/cmd"

func main() {
	cmd.Execute()
}
