package main

import (
	"log"

	"github.com/yatinannam/foundathon-landing-sub000/cmd/internal/app"
)

func main() {
	if err := app.Execute(); err != nil {
		log.Fatal(err)
	}
}
