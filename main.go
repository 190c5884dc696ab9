package main

import "github.com/chrisdamba/bookrfm/cmd"

func main() {
	cmd.Execute()
}
