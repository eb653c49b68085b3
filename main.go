package main

import "resumatch/cmd"

func main() {
	cmd.Execute()
}
