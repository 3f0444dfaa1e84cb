package poly3

import "github.com/sirupsen/logrus"

var (
	log = logrus.WithField("module", "poly3")
)
