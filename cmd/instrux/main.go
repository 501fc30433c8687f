package main

import "github.com/loog-project/instrux/cmd"

func main() {
	cmd.Execute()
}
