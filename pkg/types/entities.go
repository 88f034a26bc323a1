// Package types defines the entities exchanged with the Apex backend API.
// All entities are owned and persisted server-side; the console holds
// ephemeral copies and never enforces cross-entity consistency itself.
package types

import (
	"encoding/json"
	"time"
)

// EvaluationRun status values. Transitions are server-driven; the console
// only observes and re-fetches.
const (
	RunPending   = "pending"
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// Connection is a configured endpoint/credential set for a model provider.
type Connection struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Provider  string    `json:"provider"`
	BaseURL   string    `json:"base_url,omitempty"`
	APIKey    string    `json:"api_key,omitempty"` // write-only; never echoed by the backend
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// ModelRef is a named pointer to a specific model identifier under a Connection.
type ModelRef struct {
	ID           string    `json:"id"`
	ConnectionID string    `json:"connection_id"`
	Name         string    `json:"name"`
	ModelName    string    `json:"model_name"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

// Agent is a configured AI assistant bound to one ModelRef, a set of Tools,
// and behavioral parameters.
type Agent struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	SystemPrompt  string    `json:"system_prompt,omitempty"`
	ConnectionID  string    `json:"connection_id,omitempty"`
	ModelRefID    string    `json:"model_ref_id"`
	ToolIDs       []string  `json:"tool_ids,omitempty"`
	Temperature   float64   `json:"temperature"`
	MaxIterations int       `json:"max_iterations"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
	UpdatedAt     time.Time `json:"updated_at,omitempty"`
}

// Tool is a capability an Agent may invoke. Config is tool-type specific
// and passed through to the backend opaquely.
type Tool struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Type            string          `json:"type"`
	Config          json.RawMessage `json:"config,omitempty"`
	KnowledgeBaseID string          `json:"knowledge_base_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at,omitempty"`
}

// KnowledgeBase is a named collection of Documents backing RAG tools.
type KnowledgeBase struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	DocumentCount int       `json:"document_count,omitempty"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
}

// Document is an uploaded file inside a KnowledgeBase. Chunking and
// embedding happen server-side; ChunkCount reports the outcome.
type Document struct {
	ID              string    `json:"id"`
	KnowledgeBaseID string    `json:"knowledge_base_id"`
	Filename        string    `json:"filename"`
	Status          string    `json:"status,omitempty"`
	ChunkCount      int       `json:"chunk_count,omitempty"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
}

// JudgeConfig is a reusable LLM-judge definition used to score conversation turns.
type JudgeConfig struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	PromptTemplate string          `json:"prompt_template"`
	Rubric         json.RawMessage `json:"rubric,omitempty"`
	ModelRefID     string          `json:"model_ref_id"`
	CreatedAt      time.Time       `json:"created_at,omitempty"`
}

// EvaluationRun is one execution of a JudgeConfig against a scoped set of
// conversation turns. Status is server-authoritative.
type EvaluationRun struct {
	ID            string    `json:"id"`
	ScopeType     string    `json:"scope_type"`
	JudgeConfigID string    `json:"judge_config_id,omitempty"`
	Status        string    `json:"status"`
	ScoreCount    int       `json:"score_count"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
}

// Score is one judge (and optionally human) assessment of a single
// conversation turn. The judge-produced fields are immutable from the
// console's perspective; human review overwrites only the Human* fields.
type Score struct {
	ID              string             `json:"id"`
	ConversationID  string             `json:"conversation_id"`
	TurnIndex       int                `json:"turn_index"`
	Scores          map[string]any     `json:"scores"`
	RawJudgeOutput  string             `json:"raw_judge_output,omitempty"`
	HumanScore      *float64           `json:"human_score,omitempty"`
	HumanComment    string             `json:"human_comment,omitempty"`
	HumanReviewedAt *time.Time         `json:"human_reviewed_at,omitempty"`
}

// SavedConversation references a stored conversation that evaluation runs
// can be scoped to.
type SavedConversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title,omitempty"`
	TurnCount int       `json:"turn_count,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Organization is a tenant the authenticated user belongs to.
type Organization struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// User is the authenticated principal as reported by /auth/me.
type User struct {
	ID             string         `json:"id"`
	Email          string         `json:"email"`
	Name           string         `json:"name,omitempty"`
	OrganizationID string         `json:"organization_id,omitempty"`
	Organizations  []Organization `json:"organizations,omitempty"`
}

// Session is the persisted authentication state: the bearer token issued by
// the backend plus the user it belongs to.
type Session struct {
	Token          string    `json:"token"`
	User           User      `json:"user"`
	OrganizationID string    `json:"organization_id,omitempty"`
	CreatedAt      time.Time `json:"created_at,omitempty"`
}
