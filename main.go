package main

import "github.com/z9wen/toolsss/cmd"

func main() {
	cmd.Execute()
}
