package main

import "github.com/tk103331/eino-browser-demo/cmd"

func main() {
	cmd.Execute()
}
