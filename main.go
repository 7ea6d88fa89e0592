package main

import "github.com/Mohsinsiddi/w3dex/cmd"

func main() {
	cmd.Execute()
}
