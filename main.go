package main

import "github.com/simonyos/lfm/cmd"

func main() {
	cmd.Execute()
}
