package main

import "github.com/tesh254/chatmd/cmd"

func main() {
	cmd.Execute()
}
