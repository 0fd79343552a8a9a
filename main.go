/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/ch4uTR/TarimKocum/cmd"

func main() {
	cmd.Execute()
}
