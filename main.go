package main

import "github.com/shmakota/cata-git-mod-manager/cmd"

func main() {
	cmd.Execute()
}
