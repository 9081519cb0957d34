package main

import (
	"Stylus/cmd/tracelog/app"
)

func main() {
	app.New("tracelog").Run()
}
