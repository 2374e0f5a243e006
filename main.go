package main

import "github.com/kamusis/cindex-cli/cmd"

func main() {
	cmd.Execute()
}
