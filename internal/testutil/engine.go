package testutil

import (
	"github.com/atlanticdynamic/hostbridge/internal/annotation"
)

// Engine is the engine identity a resolver is created for. A nil Marks means no annotations.
type Engine struct {
	EngineName string
	Marks      annotation.Markers
}

// NewEngine returns an Engine named name with an empty annotation catalog.
func NewEngine(name string) Engine {
	return Engine{EngineName: name, Marks: annotation.NewCatalog()}
}

func (e Engine) Name() string { return e.EngineName }

func (e Engine) Markers() annotation.Markers {
	if e.Marks == nil {
		return annotation.None{}
	}
	return e.Marks
}
