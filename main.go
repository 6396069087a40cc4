package main

import "github.com/frahmantamala/shifts-logger/cmd"

func main() {
	cmd.Execute()
}
