package main

import (
	"github.com/mj1618/luckydog/cmd"
	_ "github.com/mj1618/luckydog/internal/platform/adb"
)

func main() {
	cmd.Execute()
}
