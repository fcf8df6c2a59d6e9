package lesson

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	SubjectMath      = "Math"
	SubjectPhysics   = "Physics"
	SubjectChemistry = "Chemistry"
)

// Plan is produced once per request by the planner and never mutated.
type Plan struct {
	Subject                  string   `json:"subject"`
	Topic                    string   `json:"topic"`
	Level                    string   `json:"level"`
	Objectives               []string `json:"objectives"`
	RequiredConcepts         []string `json:"required_concepts"`
	Modalities               []string `json:"modalities"`
	VerificationRequirements []string `json:"verification_requirements"`
}

type ReasoningContext struct {
	Plan        Plan     `json:"plan"`
	Constraints []string `json:"constraints"`
	Steps       []string `json:"steps"`
	Assumptions []string `json:"assumptions"`
}

type Draft struct {
	Plan        Plan              `json:"plan"`
	ContentText string            `json:"content_text"`
	Sections    map[string]string `json:"sections"`
}

type VerificationStatus string

const (
	StatusVerified VerificationStatus = "verified"
	StatusFailed   VerificationStatus = "failed"
)

type VerificationResult struct {
	Status       VerificationStatus `json:"status"`
	ChecksPassed []string           `json:"checks_passed"`
	ChecksFailed []string           `json:"checks_failed"`
}

func (v VerificationResult) Verified() bool { return v.Status == StatusVerified }

// Scene is one storyboard frame. ImageURL is empty when no image was produced.
type Scene struct {
	ID           int    `json:"id"`
	VisualPrompt string `json:"visual_prompt"`
	Narration    string `json:"narration"`
	ImageURL     string `json:"image_url,omitempty"`
}

type Assets struct {
	AudioScript     string  `json:"audio_script"`
	VideoStoryboard []Scene `json:"video_storyboard"`

	AudioDegraded      bool `json:"audio_degraded,omitempty"`
	StoryboardFallback bool `json:"storyboard_fallback,omitempty"`
}

type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// Record is the persisted lesson.
type Record struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Topic   string    `gorm:"column:topic;not null" json:"topic"`
	Subject string    `gorm:"column:subject;not null;index" json:"subject"`
	Content string    `gorm:"column:content;type:text" json:"content"`

	Assets          datatypes.JSONType[Assets]             `gorm:"column:assets" json:"assets"`
	VerificationLog datatypes.JSONType[VerificationResult] `gorm:"column:verification_log" json:"verification_log"`

	OwnerUserID *uuid.UUID `gorm:"type:uuid;index" json:"owner_user_id,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Record) TableName() string { return "lesson_records" }

func (r *Record) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// NewRecord assembles a record from pipeline outputs.
func NewRecord(plan Plan, draft Draft, assets Assets, verification VerificationResult, now time.Time) *Record {
	return &Record{
		Topic:           plan.Topic,
		Subject:         plan.Subject,
		Content:         draft.ContentText,
		Assets:          datatypes.NewJSONType(assets),
		VerificationLog: datatypes.NewJSONType(verification),
		CreatedAt:       now.UTC(),
		UpdatedAt:       now.UTC(),
	}
}
