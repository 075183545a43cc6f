package main

import "spendlens/cmd"

func main() {
	cmd.Execute()
}
