package main

import "github.com/gaurav-prasanna/paperpipe/cmd"

func main() {
	cmd.Execute()
}
