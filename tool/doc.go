// Package tool provides a registry for tools that agents expose to language
// models. Tools are described by JSON schemas generated from Go structs and
// executed through typed handlers. Handler errors are captured in the tool
// result rather than failing the run, so the model can see what went wrong
// and recover.
package tool
