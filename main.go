package main

import "xlpress/cmd"

func main() {
	cmd.Execute()
}
