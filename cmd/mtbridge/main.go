package main

import (
	"os"

	"horse.fit/mtbridge/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
