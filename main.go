package main

import "github.com/KaramelBytes/edamaster-cli/cmd"

func main() {
	cmd.Execute()
}
