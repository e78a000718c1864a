package main

import "github.com/MOYARU/uxaudit/cmd"

func main() {
	cmd.Execute()
}
