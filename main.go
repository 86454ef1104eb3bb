package main

import "github.com/derickschaefer/atmosense/cmd"

func main() {
	cmd.Execute()
}
