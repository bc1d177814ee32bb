// bedrockgwctl inspects a deployed bedrock gateway: it verifies the
// topology wiring, smoke-tests the function, and reads usage counters
// from the shared store.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logrus.WithError(err).Error("command failed")
		os.Exit(1)
	}
}
