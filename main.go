package main

import "pxelab/cmd"

func main() {
	cmd.Execute()
}
