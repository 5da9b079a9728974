package main

import (
	"Hummify/cmd"
)

func main() {
	cmd.Execute()
}
