package awards

import (
	"net/http"

	"github.com/JaimeStill/arbiter/pkg/openapi"
)

// Schemas returns the component schemas referenced by the award operations.
func Schemas() map[string]*openapi.Schema {
	uuidSchema := &openapi.Schema{Type: "string", Format: "uuid"}
	status := func(values ...string) *openapi.Schema {
		enum := make([]any, len(values))
		for i, v := range values {
			enum[i] = v
		}
		return &openapi.Schema{Type: "string", Enum: enum}
	}

	return map[string]*openapi.Schema{
		"Award": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":           uuidSchema,
				"case_id":      uuidSchema,
				"title":        {Type: "string"},
				"version":      {Type: "integer"},
				"status":       status(string(StatusDraft), string(StatusUnderReview), string(StatusApproved), string(StatusRevisionRequested), string(StatusFinal)),
				"created_by":   {Type: "string"},
				"approved_by":  {Type: "string"},
				"finalized_at": {Type: "string", Format: "date-time"},
				"sections":     {Type: "array", Items: openapi.SchemaRef("AwardSection")},
				"reviews":      {Type: "array", Items: openapi.SchemaRef("AwardReview")},
			},
		},
		"AwardSection": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":           uuidSchema,
				"section_key":  {Type: "string"},
				"title":        {Type: "string"},
				"content":      {Type: "string"},
				"order":        {Type: "integer"},
				"status":       status(string(SectionDraft), string(SectionUnderReview), string(SectionNeedsRevision), string(SectionApproved)),
				"version":      {Type: "integer"},
				"ai_generated": {Type: "boolean"},
				"document_ids": {Type: "array", Items: uuidSchema},
			},
		},
		"AwardReview": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"reviewer_id": {Type: "string"},
				"status":      status(string(ReviewPending), string(ReviewApproved), string(ReviewRejected)),
				"comments":    {Type: "string"},
			},
		},
		"GenerateCommand": {
			Type:     "object",
			Required: []string{"case_id", "created_by"},
			Properties: map[string]*openapi.Schema{
				"case_id":    uuidSchema,
				"created_by": {Type: "string"},
			},
		},
		"SubmitCommand": {
			Type:     "object",
			Required: []string{"reviewer_ids"},
			Properties: map[string]*openapi.Schema{
				"reviewer_ids": {Type: "array", Items: &openapi.Schema{Type: "string"}},
			},
		},
		"ProcessReviewCommand": {
			Type:     "object",
			Required: []string{"reviewer_id", "status"},
			Properties: map[string]*openapi.Schema{
				"reviewer_id": {Type: "string"},
				"status":      status(string(ReviewApproved), string(ReviewRejected), string(ReviewPending)),
				"comments":    {Type: "string"},
				"section_reviews": {
					Type: "array",
					Items: &openapi.Schema{
						Type: "object",
						Properties: map[string]*openapi.Schema{
							"section_id": uuidSchema,
							"status":     status(string(ReviewApproved), string(ReviewRejected)),
							"comments":   {Type: "string"},
						},
					},
				},
			},
		},
		"FinalizeCommand": {
			Type:       "object",
			Required:   []string{"approved_by"},
			Properties: map[string]*openapi.Schema{"approved_by": {Type: "string"}},
		},
		"ReviseCommand": {
			Type:       "object",
			Required:   []string{"content"},
			Properties: map[string]*openapi.Schema{"content": {Type: "string"}},
		},
	}
}

func awardOperation(summary, command string, success int, failures ...string) *openapi.Operation {
	op := &openapi.Operation{
		Summary: summary,
		Responses: map[int]*openapi.Response{
			success: openapi.ResponseJSON("Award", "Award"),
		},
	}
	if command != "" {
		op.RequestBody = openapi.RequestBodyJSON(command, true)
	}
	for _, name := range failures {
		op.Responses[failureStatus[name]] = openapi.ResponseRef(name)
	}
	return op
}

var failureStatus = map[string]int{
	"BadRequest": http.StatusBadRequest,
	"NotFound":   http.StatusNotFound,
	"Conflict":   http.StatusConflict,
	"BadGateway": http.StatusBadGateway,
}
