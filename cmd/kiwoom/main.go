package main

import "kiwoom/internal/cli"

func main() {
	cli.Execute()
}
