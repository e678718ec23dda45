package main

import "github.com/stagechat/stagechat/cmd"

func main() {
	cmd.Execute()
}
