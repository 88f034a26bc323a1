package types

// Input structs carry form submissions. They double as the YAML definition
// format accepted by `apexctl ... create -f file.yaml`.

// ConnectionInput is the create/edit form for a Connection.
type ConnectionInput struct {
	Name     string `json:"name" yaml:"name"`
	Provider string `json:"provider" yaml:"provider"`
	BaseURL  string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	APIKey   string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// ModelRefInput is the create/edit form for a ModelRef.
type ModelRefInput struct {
	ConnectionID string `json:"connection_id" yaml:"connection_id"`
	Name         string `json:"name" yaml:"name"`
	ModelName    string `json:"model_name" yaml:"model_name"`
}

// AgentInput is the create/edit form for an Agent. ConnectionID is a
// UI-level field: it scopes which ModelRefs may be chosen but the backend
// derives it from ModelRefID.
type AgentInput struct {
	Name          string   `json:"name" yaml:"name"`
	Description   string   `json:"description,omitempty" yaml:"description,omitempty"`
	SystemPrompt  string   `json:"system_prompt,omitempty" yaml:"system_prompt,omitempty"`
	ConnectionID  string   `json:"connection_id,omitempty" yaml:"connection_id,omitempty"`
	ModelRefID    string   `json:"model_ref_id" yaml:"model_ref_id"`
	ToolIDs       []string `json:"tool_ids,omitempty" yaml:"tool_ids,omitempty"`
	Temperature   float64  `json:"temperature" yaml:"temperature"`
	MaxIterations int      `json:"max_iterations" yaml:"max_iterations"`
}

// ToolInput is the create/edit form for a Tool. ConfigJSON is free text and
// must parse as JSON before submission.
type ToolInput struct {
	Name            string `json:"name" yaml:"name"`
	Description     string `json:"description,omitempty" yaml:"description,omitempty"`
	Type            string `json:"type" yaml:"type"`
	ConfigJSON      string `json:"-" yaml:"config_json,omitempty"`
	KnowledgeBaseID string `json:"knowledge_base_id,omitempty" yaml:"knowledge_base_id,omitempty"`
}

// KnowledgeBaseInput is the create/edit form for a KnowledgeBase.
type KnowledgeBaseInput struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// UploadParams configures server-side chunking for a document upload.
type UploadParams struct {
	ChunkSize    int `json:"chunk_size" yaml:"chunk_size"`
	ChunkOverlap int `json:"chunk_overlap" yaml:"chunk_overlap"`
}

// JudgeConfigInput is the create/edit form for a JudgeConfig. RubricJSON is
// free text and must parse as a JSON object before submission.
type JudgeConfigInput struct {
	Name           string `json:"name" yaml:"name"`
	PromptTemplate string `json:"prompt_template" yaml:"prompt_template"`
	RubricJSON     string `json:"-" yaml:"rubric_json,omitempty"`
	ModelRefID     string `json:"model_ref_id" yaml:"model_ref_id"`
}

// RunInput creates an EvaluationRun scoped to a saved conversation turn.
type RunInput struct {
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id,omitempty"`
	TurnIndex      int    `json:"turn_index"`
	JudgeConfigID  string `json:"judge_config_id"`
	RequestID      string `json:"request_id,omitempty"`
}

// HumanReview overwrites the human assessment of one score. Resubmission is
// idempotent per (run, score).
type HumanReview struct {
	HumanScore   float64 `json:"human_score"`
	HumanComment string  `json:"human_comment,omitempty"`
}
