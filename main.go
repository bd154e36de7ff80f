package main

import "site-janitor/cmd"

func main() {
	cmd.Execute()
}
