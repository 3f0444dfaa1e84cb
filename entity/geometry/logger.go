package geometry

import "github.com/sirupsen/logrus"

var (
	log = logrus.WithField("module", "geometry")
)
