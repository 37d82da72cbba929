package main

import "github.com/shelfdata/subjectwatch/cmd"

func main() {
	cmd.Execute()
}
