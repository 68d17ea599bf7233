package main

import (
	"github.com/KikeGitHub/lealtix-main/cmd"
)

func main() {
	cmd.Execute()
}
