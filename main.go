package main

import (
	"github.com/luma/warchat/cmd"
)

func main() {
	cmd.Execute()
}
