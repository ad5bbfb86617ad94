package state

import (
	"time"

	"doc2scorm/render"
)

// newLocalEnv creates a new LocalEnv instance with default values
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		start:        time.Now(),
		PageTemplate: render.DefaultTemplate(),
	}
}
