// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DocGate Contributors

package policy

import (
	"encoding/json"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// Compiled schemas are cached: the Go types they are reflected from are
// immutable at runtime.
var (
	resourceSchemaOnce sync.Once
	resourceSchema     *jschema.Schema
	resourceSchemaErr  error

	userSchemaOnce sync.Once
	userSchema     *jschema.Schema
	userSchemaErr  error
)

// GenerateResourceDocumentSchema generates the JSON Schema for resource
// policy documents, reflected from the Go model. Exposed for tooling.
func GenerateResourceDocumentSchema() ([]byte, error) {
	return generateSchema(&ResourceDocument{}, "Resource Policy Document")
}

// GenerateUserDocumentSchema generates the JSON Schema for user policy
// documents.
func GenerateUserDocumentSchema() ([]byte, error) {
	return generateSchema(&UserDocument{}, "User Policy Document")
}

func generateSchema(model any, title string) ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := r.Reflect(model)
	schema.Title = title

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, oops.Code("SCHEMA_GENERATE_FAILED").Wrap(err)
	}
	return data, nil
}

// ValidateResourceDocumentSchema validates raw JSON against the resource
// document schema. Unknown properties fail validation.
func ValidateResourceDocumentSchema(data []byte) error {
	resourceSchemaOnce.Do(func() {
		resourceSchema, resourceSchemaErr = compileSchema(GenerateResourceDocumentSchema)
	})
	return validateAgainst(resourceSchema, resourceSchemaErr, data)
}

// ValidateUserDocumentSchema validates raw JSON against the user document
// schema.
func ValidateUserDocumentSchema(data []byte) error {
	userSchemaOnce.Do(func() {
		userSchema, userSchemaErr = compileSchema(GenerateUserDocumentSchema)
	})
	return validateAgainst(userSchema, userSchemaErr, data)
}

func compileSchema(generate func() ([]byte, error)) (*jschema.Schema, error) {
	schemaBytes, err := generate()
	if err != nil {
		return nil, err
	}

	var schemaData any
	if err := json.Unmarshal(schemaBytes, &schemaData); err != nil {
		return nil, oops.Code("SCHEMA_COMPILE_FAILED").Wrapf(err, "parsing generated schema")
	}

	c := jschema.NewCompiler()
	if err := c.AddResource("schema.json", schemaData); err != nil {
		return nil, oops.Code("SCHEMA_COMPILE_FAILED").Wrapf(err, "adding schema resource")
	}
	sch, err := c.Compile("schema.json")
	if err != nil {
		return nil, oops.Code("SCHEMA_COMPILE_FAILED").Wrapf(err, "compiling schema")
	}
	return sch, nil
}

func validateAgainst(sch *jschema.Schema, compileErr error, data []byte) error {
	if compileErr != nil {
		return compileErr
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return oops.Code("POLICY_INVALID").Wrapf(err, "policy document is not valid JSON")
	}
	if err := sch.Validate(doc); err != nil {
		return oops.Code("POLICY_INVALID").Wrapf(err, "policy document failed schema validation")
	}
	return nil
}
