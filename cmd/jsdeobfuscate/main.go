package main

import "github.com/fxnatic/jsdeobfuscator/cmd/jsdeobfuscate/cmd"

func main() {
	cmd.Execute()
}
