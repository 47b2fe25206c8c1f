package main

import "github.com/tabulardb/tabular/cmd"

func main() {
	cmd.Execute()
}
