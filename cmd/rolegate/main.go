package main

import "github.com/jonwraymond/rolegate/cmd/rolegate/cmd"

func main() {
	cmd.Execute()
}
