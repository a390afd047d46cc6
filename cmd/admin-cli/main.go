package main

import "libraryhub/cmd/admin-cli/command"

func main() {
	command.Execute()
}
