package main

import "github.com/gaurav-prasanna/chatdoc/cmd"

func main() {
	cmd.Execute()
}
