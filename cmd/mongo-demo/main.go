// Package main is the entry point for mongo-demo.
package main

import (
	"github.com/kart-io/logger"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/kart-io/sentinel-mongo/internal/demo"
)

func main() {
	_, _ = maxprocs.Set(maxprocs.Logger(logger.Infof))

	demo.NewApp().Run()
}
