package providers

import (
	"fmt"

	"github.com/gookit/validate"

	"tvd/internal/structures"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	if !v.Validate() {
		return v.Errors
	}
	if cv.conf.Video.ChunkUnit <= 0 || cv.conf.Video.ChunkBudget <= 0 {
		return fmt.Errorf("video.chunkUnit and video.chunkBudget must be positive")
	}
	return nil
}
