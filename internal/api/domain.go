package api

import "github.com/JaimeStill/caloric/internal/estimates"

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Estimates estimates.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	return &Domain{
		Estimates: estimates.New(runtime.Workflow, runtime.ScratchDir, runtime.Logger),
	}
}
