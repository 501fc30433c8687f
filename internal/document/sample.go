package document

import (
	_ "embed"
	"slices"
)

//go:embed sample.json
var sampleJSON []byte

// SampleJSON returns the raw sample instruction document.
func SampleJSON() []byte {
	return slices.Clone(sampleJSON)
}

// Sample returns a freshly decoded copy of the sample instruction document.
func Sample() *Instruction {
	inst, err := Decode(sampleJSON)
	if err != nil {
		panic("document: embedded sample is invalid: " + err.Error())
	}
	return inst
}
