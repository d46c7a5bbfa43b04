package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	if err := newApp(logger).Run(os.Args); err != nil {
		logger.Fatalf("designer-cli: %v", err)
	}
}
