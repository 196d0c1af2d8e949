package main

import "github.com/xiaot623/gogo/askbot/cmd"

func main() {
	cmd.Execute()
}
