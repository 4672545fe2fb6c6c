package main

import (
	"fmt"

	"github.com/oy3o/archive"
)

// BaseClass is the abstract root of the objects in the sample document.
type BaseClass interface {
	archive.Serializer
	Describe() string
}

type ClassA struct {
	Value string
}

func (c *ClassA) Describe() string { return fmt.Sprintf("ClassA{value=%q}", c.Value) }

func (c *ClassA) Serialize(a *archive.Archive) error {
	return a.Field("value", &c.Value)
}

// pair is archived as an object with members "0" and "1".
type pair struct {
	First, Second int
}

func (p *pair) Serialize(a *archive.Archive) error {
	a.Field("0", &p.First)
	a.Field("1", &p.Second)
	return a.Err()
}

type ClassB struct {
	Data pair
}

func (c *ClassB) Describe() string { return fmt.Sprintf("ClassB{data=[%d %d]}", c.Data.First, c.Data.Second) }

func (c *ClassB) Serialize(a *archive.Archive) error {
	return a.Field("data", &c.Data)
}

func registerTypes(r *archive.Registry) {
	archive.MustRegisterAbstract[BaseClass](r, "BaseClass")
	archive.MustRegister[ClassA](r, "ClassA", archive.TypeOf[BaseClass]())
	archive.MustRegister[ClassB](r, "ClassB", archive.TypeOf[BaseClass]())
}

// document is the top level of the sample: two fields archived side by side.
type document struct {
	SampleArray pair
	Objects     []BaseClass
}

func (d *document) archive(a *archive.Archive) error {
	a.Field("sampleArray", &d.SampleArray)
	a.Field("objects", &d.Objects)
	return a.Err()
}

const scenarioJSON = `{
  // Built-in sample, used when no --input is given.
  "sampleArray": {"0": 100, "1": 101},
  "objects": [
    {"@type": "ClassA", "value": "hello"},
    {"@type": "ClassB", "data": {"0": 102, "1": 103}},
  ]
}`
