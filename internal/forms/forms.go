// Package forms validates entity submissions before any network call and
// computes minimal update payloads. Validation failures surface as
// field-level errors, mirroring inline form messages.
package forms

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/segmentio/encoding/json"
	"github.com/tidwall/gjson"

	"github.com/anonymeye/apex-platform/pkg/types"
)

// FieldError is a validation failure tied to one form field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates the field errors of one submission.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

const agentSchema = `{
	"type": "object",
	"required": ["name", "model_ref_id"],
	"properties": {
		"name":           {"type": "string", "minLength": 1, "maxLength": 200},
		"description":    {"type": "string"},
		"system_prompt":  {"type": "string"},
		"connection_id":  {"type": "string"},
		"model_ref_id":   {"type": "string", "minLength": 1},
		"tool_ids":       {"type": "array", "items": {"type": "string"}},
		"temperature":    {"type": "number", "minimum": 0, "maximum": 2},
		"max_iterations": {"type": "integer", "minimum": 1, "maximum": 50}
	}
}`

const connectionSchema = `{
	"type": "object",
	"required": ["name", "provider"],
	"properties": {
		"name":     {"type": "string", "minLength": 1, "maxLength": 200},
		"provider": {"type": "string", "minLength": 1},
		"base_url": {"type": "string"},
		"api_key":  {"type": "string"}
	}
}`

const modelRefSchema = `{
	"type": "object",
	"required": ["connection_id", "name", "model_name"],
	"properties": {
		"connection_id": {"type": "string", "minLength": 1},
		"name":          {"type": "string", "minLength": 1, "maxLength": 200},
		"model_name":    {"type": "string", "minLength": 1}
	}
}`

const toolSchema = `{
	"type": "object",
	"required": ["name", "type"],
	"properties": {
		"name":              {"type": "string", "minLength": 1, "maxLength": 200},
		"description":       {"type": "string"},
		"type":              {"type": "string", "enum": ["rag_search", "api_call", "function"]},
		"knowledge_base_id": {"type": "string"}
	}
}`

const knowledgeBaseSchema = `{
	"type": "object",
	"required": ["name"],
	"properties": {
		"name":        {"type": "string", "minLength": 1, "maxLength": 200},
		"description": {"type": "string"}
	}
}`

const judgeConfigSchema = `{
	"type": "object",
	"required": ["name", "prompt_template", "model_ref_id"],
	"properties": {
		"name":            {"type": "string", "minLength": 1, "maxLength": 200},
		"prompt_template": {"type": "string", "minLength": 1},
		"model_ref_id":    {"type": "string", "minLength": 1}
	}
}`

var (
	compiledAgent         = mustCompile("agent.json", agentSchema)
	compiledConnection    = mustCompile("connection.json", connectionSchema)
	compiledModelRef      = mustCompile("modelref.json", modelRefSchema)
	compiledTool          = mustCompile("tool.json", toolSchema)
	compiledKnowledgeBase = mustCompile("knowledgebase.json", knowledgeBaseSchema)
	compiledJudgeConfig   = mustCompile("judgeconfig.json", judgeConfigSchema)
)

func mustCompile(name, src string) *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(src))
	if err != nil {
		panic(fmt.Sprintf("parse schema %s: %v", name, err))
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(name, doc); err != nil {
		panic(fmt.Sprintf("add schema %s: %v", name, err))
	}
	return c.MustCompile(name)
}

// validate marshals in to its wire form and checks it against schema.
func validate(schema *jsonschema.Schema, in any) ValidationErrors {
	raw, err := json.Marshal(in)
	if err != nil {
		return ValidationErrors{{Field: "", Message: err.Error()}}
	}
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return ValidationErrors{{Field: "", Message: err.Error()}}
	}
	if err := schema.Validate(instance); err != nil {
		if verr, ok := err.(*jsonschema.ValidationError); ok {
			return flatten(verr)
		}
		return ValidationErrors{{Field: "", Message: err.Error()}}
	}
	return nil
}

// flatten walks to the leaf causes and maps each to a field error.
func flatten(err *jsonschema.ValidationError) ValidationErrors {
	var out ValidationErrors
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			out = append(out, FieldError{
				Field:   "/" + strings.Join(e.InstanceLocation, "/"),
				Message: e.Error(),
			})
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(err)
	return out
}

// checkJSONField validates a free-text JSON field. Invalid JSON blocks
// submission with a field-level error rather than being sent to the backend.
func checkJSONField(field, raw string, requireObject bool) *FieldError {
	if raw == "" {
		return nil
	}
	if !gjson.Valid(raw) {
		return &FieldError{Field: field, Message: "must be valid JSON"}
	}
	if requireObject && !gjson.Parse(raw).IsObject() {
		return &FieldError{Field: field, Message: "must be a JSON object"}
	}
	return nil
}

// ValidateAgent checks an agent submission. Returns nil or ValidationErrors.
func ValidateAgent(in types.AgentInput) error {
	if errs := validate(compiledAgent, in); len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateConnection checks a connection submission.
func ValidateConnection(in types.ConnectionInput) error {
	if errs := validate(compiledConnection, in); len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateModelRef checks a model-reference submission.
func ValidateModelRef(in types.ModelRefInput) error {
	if errs := validate(compiledModelRef, in); len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateTool checks a tool submission, including the free-text config.
// RAG search tools must reference a knowledge base.
func ValidateTool(in types.ToolInput) error {
	errs := validate(compiledTool, in)
	if fe := checkJSONField("/config", in.ConfigJSON, false); fe != nil {
		errs = append(errs, *fe)
	}
	if in.Type == "rag_search" && in.KnowledgeBaseID == "" {
		errs = append(errs, FieldError{Field: "/knowledge_base_id", Message: "required for rag_search tools"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateKnowledgeBase checks a knowledge-base submission.
func ValidateKnowledgeBase(in types.KnowledgeBaseInput) error {
	if errs := validate(compiledKnowledgeBase, in); len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateJudgeConfig checks a judge-config submission, including the
// free-text rubric which must be a JSON object.
func ValidateJudgeConfig(in types.JudgeConfigInput) error {
	errs := validate(compiledJudgeConfig, in)
	if fe := checkJSONField("/rubric", in.RubricJSON, true); fe != nil {
		errs = append(errs, *fe)
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateUploadParams checks document chunking parameters.
func ValidateUploadParams(p types.UploadParams) error {
	var errs ValidationErrors
	if p.ChunkSize < 0 || p.ChunkSize > 8192 {
		errs = append(errs, FieldError{Field: "/chunk_size", Message: "must be between 0 and 8192"})
	}
	if p.ChunkOverlap < 0 {
		errs = append(errs, FieldError{Field: "/chunk_overlap", Message: "must not be negative"})
	}
	if p.ChunkSize > 0 && p.ChunkOverlap >= p.ChunkSize {
		errs = append(errs, FieldError{Field: "/chunk_overlap", Message: "must be smaller than chunk_size"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
