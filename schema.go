package bistrograph

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

type propertyDef struct {
	Type        string                  `json:"type"`
	Description string                  `json:"description,omitempty"`
	Items       *propertyDef            `json:"items,omitempty"`
	Properties  map[string]*propertyDef `json:"properties,omitempty"`
	Required    []string                `json:"required,omitempty"`
}

// SchemaFor generates a JSON schema from struct type T for use as tool
// parameters. Field names come from json tags; `desc` tags become property
// descriptions and `required:"true"` marks a field required.
//
//	type SearchArgs struct {
//	    Query string `json:"query" desc:"Search keywords" required:"true"`
//	    Limit int    `json:"limit" desc:"Max results"`
//	}
func SchemaFor[T any]() (json.RawMessage, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return nil, fmt.Errorf("schema: cannot reflect interface type")
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("schema: %s is not a struct", t.Kind())
	}

	props := make(map[string]*propertyDef)
	var required []string

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}
		name := strings.Split(jsonTag, ",")[0]
		if name == "" {
			name = field.Name
		}

		prop := typeToProperty(field.Type)
		if desc := field.Tag.Get("desc"); desc != "" {
			prop.Description = desc
		}
		props[name] = prop

		if field.Tag.Get("required") == "true" {
			required = append(required, name)
		}
	}

	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return json.Marshal(schema)
}

// MustSchemaFor is like SchemaFor but panics on error.
func MustSchemaFor[T any]() json.RawMessage {
	schema, err := SchemaFor[T]()
	if err != nil {
		panic(err)
	}
	return schema
}

func typeToProperty(t reflect.Type) *propertyDef {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.String:
		return &propertyDef{Type: "string"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &propertyDef{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		return &propertyDef{Type: "number"}
	case reflect.Bool:
		return &propertyDef{Type: "boolean"}
	case reflect.Slice, reflect.Array:
		return &propertyDef{Type: "array", Items: typeToProperty(t.Elem())}
	case reflect.Struct:
		props := make(map[string]*propertyDef)
		var required []string
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			jsonTag := field.Tag.Get("json")
			if jsonTag == "-" {
				continue
			}
			name := strings.Split(jsonTag, ",")[0]
			if name == "" {
				name = field.Name
			}
			prop := typeToProperty(field.Type)
			if desc := field.Tag.Get("desc"); desc != "" {
				prop.Description = desc
			}
			props[name] = prop
			if field.Tag.Get("required") == "true" {
				required = append(required, name)
			}
		}
		return &propertyDef{Type: "object", Properties: props, Required: required}
	case reflect.Map:
		return &propertyDef{Type: "object"}
	default:
		return &propertyDef{Type: "string"}
	}
}
