package main

import (
	"os"
)

// General API documentation for swaggo. Run `swag init -g cmd/visiond/main.go`
// to regenerate docs.
//
// @title           visiond API
// @version         1.0
// @description     HTTP API for asynchronous image description.
//
// @BasePath  /
//
// @schemes http

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
